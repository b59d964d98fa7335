// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: API key validation guarding the counting endpoints. The health
//     probe and docs are registered before it and stay public.
//   - RayID: Assigns every request a ray id for log correlation, honoring a
//     client-supplied X-Ray-ID so retried submissions from the same device
//     can be traced across attempts.
//
// Both are registered globally in the server startup sequence.
package middleware
