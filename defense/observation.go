package defense

import (
	"fmt"
	"math"
)

// BallObservation is one vision-pipeline sample of the ball's kinematic
// state. Timestamps are seconds on the sensor clock and must be
// monotonically increasing across samples; the derivatives are whatever the
// upstream estimator produced (typically finite differences).
type BallObservation struct {
	Pos  Vec2    `json:"pos"`
	Vel  Vec2    `json:"vel"`
	Acc  Vec2    `json:"acc"`
	Jerk Vec2    `json:"jerk"`
	T    float64 `json:"t"`
}

// OpponentObservation is one sample of a rival robot. Opponents carry no
// identity across ticks; the caller supplies a fresh ordered list every tick.
type OpponentObservation struct {
	Pos Vec2    `json:"pos"`
	Vel Vec2    `json:"vel"`
	T   float64 `json:"t"`
}

// GoalieObservation is the goalie's own pose as reported by the motor
// layer, plus the arrival signal it raises once the commanded intercept
// point has been reached.
type GoalieObservation struct {
	Pos         Vec2    `json:"pos"`
	T           float64 `json:"t"`
	AtIntercept bool    `json:"atIntercept"`
}

func finiteScalar(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (o BallObservation) validate() *Diagnostic {
	switch {
	case !finiteScalar(o.T):
		return invalidObservation("ball sample has non-finite timestamp")
	case !o.Pos.IsFinite():
		return invalidObservation("ball position is non-finite")
	case !o.Vel.IsFinite():
		return invalidObservation("ball velocity is non-finite")
	case !o.Acc.IsFinite():
		return invalidObservation("ball acceleration is non-finite")
	case !o.Jerk.IsFinite():
		return invalidObservation("ball jerk is non-finite")
	}
	return nil
}

func (o OpponentObservation) validate() *Diagnostic {
	switch {
	case !finiteScalar(o.T):
		return invalidObservation("opponent sample has non-finite timestamp")
	case !o.Pos.IsFinite():
		return invalidObservation("opponent position is non-finite")
	case !o.Vel.IsFinite():
		return invalidObservation("opponent velocity is non-finite")
	}
	return nil
}

func staleSample(what string, t, last float64) *Diagnostic {
	return invalidObservation(fmt.Sprintf("%s sample at t=%.6f is not newer than t=%.6f", what, t, last))
}
