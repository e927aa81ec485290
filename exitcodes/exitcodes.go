// Package exitcodes defines the standard exit codes used by the coverage pipeline.
package exitcodes

// Exit code constants used when the pipeline process exits:
//
// * Success (0): the report was generated; presenter outcome is advisory
// * RuntimeErr (1): a stage collaborator could not be invoked at all
// * CleanupFailure (2): removing stale artifacts was blocked
//
// When a collaborator itself exits nonzero, its own exit code is surfaced
// unchanged; CleanupFailure is reserved so it stays distinguishable from
// build and test exit codes.
const (
	Success        = 0
	RuntimeErr     = 1
	CleanupFailure = 2
)
