// Package itemkey canonicalizes heterogeneous item identifiers.
//
// Counting clients scan UPCs, EANs, custom SKUs, manufacturer SKUs, and raw
// system ids, often with stray whitespace or case variants. Normalize folds
// all of these into one comparable string key so that the event log, the
// totals aggregator, and the finalization engine always agree on what "the
// same item" means.
package itemkey
