// Package models defines the persistence models and client views for the
// counting feature.
//
// The persisted entities are Session, Participant, CountEvent,
// ManualOverride, and FinalSnapshot. The event log is the single source of
// truth: totals are always derived by summation, never maintained as mutable
// running counters, which is what makes concurrent retried submissions safe.
package models
