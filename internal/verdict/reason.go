// Package verdict compares a compiler run against a fixture's expectation.
package verdict

// Reason identifies why a fixture failed. Each reason maps to one root
// cause.
type Reason string

const (
	// Valid fixtures.
	NonZeroExit      Reason = "NonZeroExit"
	UnexpectedStderr Reason = "UnexpectedStderr"

	// Erroring fixtures, in the order they are checked.
	ExpectedFailureButSucceeded Reason = "ExpectedFailureButSucceeded"
	EmptyStderr                 Reason = "EmptyStderr"
	MalformedDiagnosticOutput   Reason = "MalformedDiagnosticOutput"
	WrongDiagnosticCount        Reason = "WrongDiagnosticCount"
	WrongDiagnosticID           Reason = "WrongDiagnosticId"
	WrongDiagnosticLocation     Reason = "WrongDiagnosticLocation"

	// Either kind, checked first.
	TimeoutFailure Reason = "TimeoutFailure"
)
