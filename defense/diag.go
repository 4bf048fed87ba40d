package defense

import "fmt"

// Diagnostic codes. None of these are fatal: the arbiter always produces a
// defined action, and diagnostics only describe inputs that were dropped or
// values that were clamped on the way.
const (
	// DiagInvalidObservation marks a sample that was dropped because it
	// carried non-finite values or an out-of-order timestamp. The prior
	// state is kept untouched.
	DiagInvalidObservation DiagCode = "invalid_observation"

	// DiagDegenerateGeometry marks a zero-length direction or distance that
	// was clamped to a minimum epsilon instead of dividing by zero.
	DiagDegenerateGeometry DiagCode = "degenerate_geometry"

	// DiagConfigOutOfRange marks a tunable that was outside its valid range
	// and got clamped to the nearest bound at construction.
	DiagConfigOutOfRange DiagCode = "config_out_of_range"
)

// DiagCode identifies a class of non-fatal input problem.
type DiagCode string

// Diagnostic is a warning surfaced to the caller. It satisfies error so
// hosts can log or wrap it, but the core never aborts on one.
type Diagnostic struct {
	Code   DiagCode `json:"code"`
	Detail string   `json:"detail"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Code, d.Detail)
}

func invalidObservation(detail string) *Diagnostic {
	return &Diagnostic{Code: DiagInvalidObservation, Detail: detail}
}

func degenerateGeometry(detail string) *Diagnostic {
	return &Diagnostic{Code: DiagDegenerateGeometry, Detail: detail}
}

func configOutOfRange(detail string) *Diagnostic {
	return &Diagnostic{Code: DiagConfigOutOfRange, Detail: detail}
}
