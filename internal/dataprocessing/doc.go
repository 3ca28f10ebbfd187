// Package dataprocessing turns the raw climbing log into the tidy tables the
// charts consume.
//
// # Data Flow
//
//	RawTables → Normalize → ValidateConsistency → ApplyFilter →
//	ExpandMultipliers → ResolveUnitClimbs → ExpandAttempts → aggregates
//
// No step feeds back into an earlier one. Every function except
// Pipeline.Run is pure: it reads its inputs, allocates new outputs and never
// mutates what it was given.
//
// # Reproducibility
//
// Split grade labels such as "3-4" resolve to one of their bounds using a
// *rand.Rand seeded once per run and passed explicitly to the resolver.
// Rows are expanded in date order, ties kept in sheet order, so the same
// seed and the same sheet always yield the same grades.
//
// # Errors
//
// Rows with missing required values are dropped and reported as warnings.
// Date mismatches between climbs and sessions are validation errors that
// stop the run before any aggregation. A broken expansion invariant is
// reported as an invariant violation.
package dataprocessing
