package defense

import "math"

// epsilonSpeed is the minimum speed used when dividing distance by speed.
// Rivals moving slower than this are treated as immobile.
const epsilonSpeed = 1e-6

// OpponentTrack is the kinematic state of one rival robot. Tracks are value
// types rebuilt from fresh observations every tick; nothing in the core
// assumes identity survives from one tick to the next.
type OpponentTrack struct {
	Pos Vec2    `json:"pos"`
	Vel Vec2    `json:"vel"`
	T   float64 `json:"t"`

	seen bool
}

// Observe replaces the track state with obs, subject to the same rejection
// rules as the ball tracker: non-finite fields or a timestamp not strictly
// newer than the stored one drop the sample and keep the prior state.
func (ot *OpponentTrack) Observe(obs OpponentObservation) *Diagnostic {
	if d := obs.validate(); d != nil {
		return d
	}
	if ot.seen && obs.T <= ot.T {
		return staleSample("opponent", obs.T, ot.T)
	}
	ot.Pos = obs.Pos
	ot.Vel = obs.Vel
	ot.T = obs.T
	ot.seen = true
	return nil
}

// TimeToReach returns how long the rival needs to cover the straight-line
// distance to target at its current speed. A rival that is effectively
// standing still can never arrive, so the result is +Inf.
func (ot OpponentTrack) TimeToReach(target Vec2) float64 {
	speed := ot.Vel.Len()
	if speed < epsilonSpeed {
		return math.Inf(1)
	}
	return ot.Pos.DistanceTo(target) / speed
}

// buildTracks converts one tick's opponent observations into tracks,
// dropping invalid samples. The returned diagnostics describe each drop;
// iteration order is preserved but never affects decisions, which only
// consume the minimum time-to-reach.
func buildTracks(obs []OpponentObservation) ([]OpponentTrack, []Diagnostic) {
	tracks := make([]OpponentTrack, 0, len(obs))
	var diags []Diagnostic
	for _, o := range obs {
		var t OpponentTrack
		if d := t.Observe(o); d != nil {
			diags = append(diags, *d)
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks, diags
}

// minTimeToReach reduces the track list to the smallest time-to-reach for
// target. An empty list means no rival can contest the point: +Inf.
func minTimeToReach(tracks []OpponentTrack, target Vec2) float64 {
	best := math.Inf(1)
	for _, t := range tracks {
		if tt := t.TimeToReach(target); tt < best {
			best = tt
		}
	}
	return best
}
