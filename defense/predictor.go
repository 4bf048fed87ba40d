package defense

// Polynomial weights for the short-horizon position extrapolation.
// The jerk term carries a 3/8 weight rather than the Taylor 1/6: jerk
// estimated by finite differences lags a full sample behind, and the
// heavier cubic term makes up most of that lag on hard shots.
const (
	accelWeight = 0.5
	jerkWeight  = 3.0 / 8.0
)

// BallTracker holds the most recent accepted kinematic sample of the ball
// and predicts its position a short horizon ahead. It owns its state
// exclusively: callers only ever receive value copies.
type BallTracker struct {
	gain float64 // correction gain k applied against the previous prediction

	last BallObservation
	seen bool

	prevPredicted Vec2
	hasPrediction bool
}

// NewBallTracker returns a tracker with the given correction gain.
// A gain of zero disables the correction step entirely.
func NewBallTracker(correctionGain float64) *BallTracker {
	return &BallTracker{gain: correctionGain}
}

// Observe replaces the stored kinematic state with obs. Samples with
// non-finite values or a timestamp not strictly newer than the stored one
// are dropped and the prior state kept; the returned diagnostic says why.
// Feeding the same sample twice is therefore a no-op on the second call.
func (bt *BallTracker) Observe(obs BallObservation) *Diagnostic {
	if d := obs.validate(); d != nil {
		return d
	}
	if bt.seen && obs.T <= bt.last.T {
		return staleSample("ball", obs.T, bt.last.T)
	}
	bt.last = obs
	bt.seen = true
	return nil
}

// Predict extrapolates the ball position dt seconds past the last accepted
// sample, then applies the correction step against the previous raw
// prediction. The first call after construction or ResetPrediction has no
// history, so the raw polynomial passes through unchanged. Negative dt is
// clamped to zero.
func (bt *BallTracker) Predict(dt float64) Vec2 {
	if dt < 0 {
		dt = 0
	}

	raw := bt.last.Pos.
		Add(bt.last.Vel.Scale(dt)).
		Add(bt.last.Acc.Scale(accelWeight * dt * dt)).
		Add(bt.last.Jerk.Scale(jerkWeight * dt * dt * dt))

	corrected := raw
	if bt.hasPrediction {
		corrected = raw.Add(raw.Sub(bt.prevPredicted).Scale(bt.gain))
	}

	bt.prevPredicted = raw
	bt.hasPrediction = true
	return corrected
}

// State returns a copy of the last accepted sample and whether one exists.
func (bt *BallTracker) State() (BallObservation, bool) {
	return bt.last, bt.seen
}

// ResetPrediction clears the correction history without touching the
// stored sample. The next Predict behaves like a first call.
func (bt *BallTracker) ResetPrediction() {
	bt.prevPredicted = Vec2{}
	bt.hasPrediction = false
}

// Reset drops both the stored sample and the correction history.
func (bt *BallTracker) Reset() {
	*bt = BallTracker{gain: bt.gain}
}
