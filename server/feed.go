package server

import (
	"sync"

	"github.com/Team-Elite-2025/midas/defense"
)

// ObservationSource produces one TickInput per control cycle. dt is the
// wall time elapsed since the previous call.
type ObservationSource interface {
	Next(dt float64) defense.TickInput
}

// Actuator consumes the action chosen by a tick. The sim feed closes the
// loop itself; with a remote feed the real motor layer reacts to the
// broadcast telemetry instead.
type Actuator interface {
	Apply(action defense.Action)
}

// SimFeed is the built-in scripted match: the ball drifts a fixed step
// per tick, one rival cruises on a straight line, and the goalie is
// integrated toward whatever target the arbiter last commanded. Ball
// derivatives are estimated by the same finite-difference chains a real
// vision pipeline delivers, so the predictor sees realistic noise in the
// higher derivatives.
type SimFeed struct {
	cfg         SimConfig
	goalieSpeed float64
	geometry    defense.TargetGeometry

	t        float64
	ballPos  defense.Vec2
	ballVel  defense.Vec2
	ballAcc  defense.Vec2
	ballJerk defense.Vec2

	oppPos defense.Vec2

	goaliePos    defense.Vec2
	goalieTarget defense.Vec2
	moving       bool
}

// NewSimFeed builds a feed at the configured starting positions. The
// goalie starts at the guard point.
func NewSimFeed(cfg SimConfig, goalieSpeed float64) *SimFeed {
	return &SimFeed{
		cfg:         cfg,
		goalieSpeed: goalieSpeed,
		geometry:    cfg.Geometry(),
		ballPos:     cfg.BallStart.vec(),
		oppPos:      cfg.OpponentStart.vec(),
		goaliePos:   cfg.GuardPoint.vec(),
	}
}

// Next advances the scripted match by dt and returns the fresh samples.
func (f *SimFeed) Next(dt float64) defense.TickInput {
	if dt <= 0 {
		dt = 1e-3
	}
	f.t += dt

	// Ball: fixed drift step per tick, then the finite-difference chain
	// velocity -> acceleration -> jerk over the previous estimates.
	newPos := f.ballPos.Add(f.cfg.BallDrift.vec())
	newVel := newPos.Sub(f.ballPos).Scale(1 / dt)
	newAcc := newVel.Sub(f.ballVel).Scale(1 / dt)
	newJerk := newAcc.Sub(f.ballAcc).Scale(1 / dt)
	f.ballPos, f.ballVel, f.ballAcc, f.ballJerk = newPos, newVel, newAcc, newJerk

	f.oppPos = f.oppPos.Add(f.cfg.OpponentVel.vec().Scale(dt))

	f.advanceGoalie(dt)

	atIntercept := f.moving && f.goaliePos.DistanceTo(f.goalieTarget) <= f.cfg.ArrivalRadius

	return defense.TickInput{
		Ball: defense.BallObservation{
			Pos:  f.ballPos,
			Vel:  f.ballVel,
			Acc:  f.ballAcc,
			Jerk: f.ballJerk,
			T:    f.t,
		},
		Opponents: []defense.OpponentObservation{
			{Pos: f.oppPos, Vel: f.cfg.OpponentVel.vec(), T: f.t},
		},
		Goalie: defense.GoalieObservation{
			Pos:         f.goaliePos,
			T:           f.t,
			AtIntercept: atIntercept,
		},
		Geometry: f.geometry,
	}
}

// Apply is the sim's actuator side: movement commands steer the goalie,
// everything else parks it where it stands.
func (f *SimFeed) Apply(action defense.Action) {
	switch action.Kind {
	case defense.ActionMoveToIntercept:
		f.goalieTarget = action.Target
		f.moving = true
	case defense.ActionHoldPosition:
		f.goalieTarget = action.Target
		f.moving = f.goaliePos.DistanceTo(action.Target) > f.cfg.ArrivalRadius
	default:
		// Shots and passes release the ball; the goalie stays put.
		f.moving = false
	}
}

func (f *SimFeed) advanceGoalie(dt float64) {
	if !f.moving {
		return
	}
	delta := f.goalieTarget.Sub(f.goaliePos)
	dist := delta.Len()
	step := f.goalieSpeed * dt
	if dist <= step {
		f.goaliePos = f.goalieTarget
		return
	}
	f.goaliePos = f.goaliePos.Add(delta.Scale(step / dist))
}

// RemoteFeed hands the control loop the freshest frame pushed by an
// external vision process over the websocket. Frames are latest-wins:
// the loop never waits and stale samples are dropped by the core's own
// timestamp rules.
type RemoteFeed struct {
	mu       sync.Mutex
	geometry defense.TargetGeometry
	latest   defense.TickInput
	seen     bool
}

// NewRemoteFeed builds a feed that merges pushed frames with the static
// pitch geometry.
func NewRemoteFeed(geometry defense.TargetGeometry) *RemoteFeed {
	return &RemoteFeed{geometry: geometry}
}

// Ingest stores a frame pushed by the vision process.
func (f *RemoteFeed) Ingest(in defense.TickInput) {
	f.mu.Lock()
	in.Geometry = f.geometry
	f.latest = in
	f.seen = true
	f.mu.Unlock()
}

// Next returns the freshest ingested frame. Before the first frame
// arrives it returns an empty input whose zero-valued ball sample the
// arbiter accepts once and then holds.
func (f *RemoteFeed) Next(dt float64) defense.TickInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.seen {
		return defense.TickInput{Geometry: f.geometry}
	}
	return f.latest
}

// Apply is a no-op: with a remote feed the real motor layer consumes the
// broadcast telemetry.
func (f *RemoteFeed) Apply(action defense.Action) {}
