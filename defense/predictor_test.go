package defense

import (
	"math"
	"testing"
)

const (
	// Test tolerance for floating point comparisons
	posTolerance = 1e-9
)

func vecNear(t *testing.T, got, want Vec2, tol float64, what string) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol {
		t.Errorf("%s = (%v, %v), want (%v, %v)", what, got.X, got.Y, want.X, want.Y)
	}
}

func TestPredict_StraightLine(t *testing.T) {
	// Ball at origin moving east at 1 m/s with no higher derivatives:
	// two seconds ahead it must sit at (2, 0).
	bt := NewBallTracker(DefaultCorrectionGain)
	if d := bt.Observe(BallObservation{Pos: Vec2{0, 0}, Vel: Vec2{1, 0}, T: 1.0}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	got := bt.Predict(2.0)
	vecNear(t, got, Vec2{2, 0}, posTolerance, "Predict(2)")
}

func TestPredict_ZeroDerivativesStatic(t *testing.T) {
	// With zero velocity, acceleration and jerk the prediction is the
	// observed position for every horizon, even after correction history
	// has accumulated (the correction term is k times a zero difference).
	bt := NewBallTracker(0.5)
	pos := Vec2{3.5, -7.25}
	if d := bt.Observe(BallObservation{Pos: pos, T: 0}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	for _, dt := range []float64{0, 0.1, 1, 2, 10, 1000} {
		got := bt.Predict(dt)
		if got != pos {
			t.Errorf("Predict(%v) = %+v, want %+v", dt, got, pos)
		}
	}
}

func TestPredict_ZeroHorizonReturnsPosition(t *testing.T) {
	bt := NewBallTracker(DefaultCorrectionGain)
	pos := Vec2{1.25, 2.5}
	if d := bt.Observe(BallObservation{Pos: pos, Vel: Vec2{9, 9}, Acc: Vec2{4, 4}, Jerk: Vec2{1, 1}, T: 0}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	if got := bt.Predict(0); got != pos {
		t.Errorf("Predict(0) = %+v, want %+v", got, pos)
	}
}

func TestPredict_PolynomialWeights(t *testing.T) {
	// One axis, unit derivatives, dt=2: P + V*2 + 0.5*A*4 + (3/8)*J*8
	// = 0 + 2 + 2 + 3 = 7.
	bt := NewBallTracker(0)
	if d := bt.Observe(BallObservation{Vel: Vec2{X: 1}, Acc: Vec2{X: 1}, Jerk: Vec2{X: 1}, T: 0}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	got := bt.Predict(2)
	vecNear(t, got, Vec2{7, 0}, posTolerance, "Predict(2)")
}

func TestPredict_CorrectionChainsRawPredictions(t *testing.T) {
	// The correction step pushes the second prediction away from the
	// first raw prediction by gain times their difference.
	const gain = 0.5
	bt := NewBallTracker(gain)
	if d := bt.Observe(BallObservation{Pos: Vec2{0, 0}, Vel: Vec2{1, 0}, T: 0}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	first := bt.Predict(1) // raw (1,0), no history yet
	vecNear(t, first, Vec2{1, 0}, posTolerance, "first Predict(1)")

	if d := bt.Observe(BallObservation{Pos: Vec2{1, 0}, Vel: Vec2{1, 0}, T: 1}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	// raw = (2,0); corrected = raw + 0.5*((2,0)-(1,0)) = (2.5, 0).
	second := bt.Predict(1)
	vecNear(t, second, Vec2{2.5, 0}, posTolerance, "second Predict(1)")
}

func TestPredict_NegativeHorizonClamped(t *testing.T) {
	bt := NewBallTracker(0)
	pos := Vec2{4, 4}
	if d := bt.Observe(BallObservation{Pos: pos, Vel: Vec2{1, 1}, T: 0}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}

	if got := bt.Predict(-3); got != pos {
		t.Errorf("Predict(-3) = %+v, want clamp to current position %+v", got, pos)
	}
}

func TestObserve_RejectsStaleAndNonFinite(t *testing.T) {
	base := BallObservation{Pos: Vec2{1, 2}, Vel: Vec2{3, 4}, T: 5}

	testCases := []struct {
		name        string
		obs         BallObservation
		description string
	}{
		{
			name:        "SameTimestamp",
			obs:         base,
			description: "feeding the identical sample twice must be a no-op",
		},
		{
			name:        "OlderTimestamp",
			obs:         BallObservation{Pos: Vec2{9, 9}, T: 4.5},
			description: "out-of-order samples are dropped, not merged",
		},
		{
			name:        "NaNPosition",
			obs:         BallObservation{Pos: Vec2{math.NaN(), 0}, T: 6},
			description: "non-finite position",
		},
		{
			name:        "InfVelocity",
			obs:         BallObservation{Vel: Vec2{0, math.Inf(1)}, T: 6},
			description: "non-finite velocity",
		},
		{
			name:        "NaNJerk",
			obs:         BallObservation{Jerk: Vec2{math.NaN(), 0}, T: 6},
			description: "non-finite jerk",
		},
		{
			name:        "NaNTimestamp",
			obs:         BallObservation{T: math.NaN()},
			description: "non-finite timestamp",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bt := NewBallTracker(0)
			if d := bt.Observe(base); d != nil {
				t.Fatalf("seed observation rejected: %v", d)
			}

			d := bt.Observe(tc.obs)
			if d == nil {
				t.Fatalf("%s: sample accepted, want rejection", tc.description)
			}
			if d.Code != DiagInvalidObservation {
				t.Errorf("diagnostic code = %q, want %q", d.Code, DiagInvalidObservation)
			}

			state, ok := bt.State()
			if !ok || state != base {
				t.Errorf("stored state changed after rejected sample: %+v", state)
			}
		})
	}
}

func TestResetPrediction_ClearsHistoryOnly(t *testing.T) {
	bt := NewBallTracker(1.0)
	if d := bt.Observe(BallObservation{Pos: Vec2{0, 0}, Vel: Vec2{1, 0}, T: 0}); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	bt.Predict(1)
	bt.ResetPrediction()

	// With the history gone the next call is raw again despite gain 1.
	got := bt.Predict(1)
	vecNear(t, got, Vec2{1, 0}, posTolerance, "Predict after ResetPrediction")

	if _, ok := bt.State(); !ok {
		t.Error("ResetPrediction dropped the stored sample")
	}
}
