package defense

import "fmt"

// Tunable defaults. Declared here rather than as package-level variables so
// every arbiter carries its own immutable copy and tests can vary them
// freely.
const (
	// DefaultInterceptThreshold is the ratio of rival to goalie
	// time-to-reach above which interception is considered safe.
	DefaultInterceptThreshold = 0.75

	// DefaultCorrectionGain is the gain k applied against the previous
	// prediction in the error-correction step.
	DefaultCorrectionGain = 0.1

	// DefaultPredictionHorizon is how far ahead of the last ball sample
	// the intercept point is extrapolated, in seconds.
	DefaultPredictionHorizon = 0.5

	// DefaultClearanceRadius is the minimum obstacle distance for a shot
	// or pass arc to count as clear, in metres.
	DefaultClearanceRadius = 1.0

	// DefaultCurveSamples is the number of subdivisions used when sampling
	// clearance arcs.
	DefaultCurveSamples = 24

	// DefaultGoalieSpeed is the fixed goalie speed assumed by the default
	// motion model, in metres per second.
	DefaultGoalieSpeed = 2.0
)

// Config is the full set of arbiter tunables. It is consumed at
// construction, normalized once, and never mutated afterwards.
type Config struct {
	InterceptThreshold float64
	CorrectionGain     float64
	PredictionHorizon  float64
	ClearanceRadius    float64
	CurveSamples       int
	GoalieSpeed        float64
}

// DefaultConfig returns the tunables the arbiter ships with.
func DefaultConfig() Config {
	return Config{
		InterceptThreshold: DefaultInterceptThreshold,
		CorrectionGain:     DefaultCorrectionGain,
		PredictionHorizon:  DefaultPredictionHorizon,
		ClearanceRadius:    DefaultClearanceRadius,
		CurveSamples:       DefaultCurveSamples,
		GoalieSpeed:        DefaultGoalieSpeed,
	}
}

// normalize clamps every field into its valid range. Out-of-range values
// are never fatal: each clamp is reported as a warning diagnostic and the
// nearest valid bound is used instead.
func (c Config) normalize() (Config, []Diagnostic) {
	var diags []Diagnostic
	clamp := func(field string, got, bound float64) {
		diags = append(diags, *configOutOfRange(
			fmt.Sprintf("%s %g out of range, clamped to %g", field, got, bound)))
	}

	if c.InterceptThreshold <= 0 {
		clamp("intercept threshold", c.InterceptThreshold, epsilonSpeed)
		c.InterceptThreshold = epsilonSpeed
	} else if c.InterceptThreshold > 1 {
		clamp("intercept threshold", c.InterceptThreshold, 1)
		c.InterceptThreshold = 1
	}
	if c.CorrectionGain < 0 {
		clamp("correction gain", c.CorrectionGain, 0)
		c.CorrectionGain = 0
	}
	if c.PredictionHorizon < 0 {
		clamp("prediction horizon", c.PredictionHorizon, 0)
		c.PredictionHorizon = 0
	}
	if c.ClearanceRadius < 0 {
		clamp("clearance radius", c.ClearanceRadius, 0)
		c.ClearanceRadius = 0
	}
	if c.CurveSamples < 2 {
		clamp("curve samples", float64(c.CurveSamples), 2)
		c.CurveSamples = 2
	}
	if c.GoalieSpeed < epsilonSpeed {
		clamp("goalie speed", c.GoalieSpeed, epsilonSpeed)
		c.GoalieSpeed = epsilonSpeed
	}
	return c, diags
}
