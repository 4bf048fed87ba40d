package server

import (
	"math"
	"testing"

	"github.com/Team-Elite-2025/midas/defense"
)

const feedTolerance = 1e-9

func near(t *testing.T, got, want float64, what string) {
	t.Helper()
	if math.Abs(got-want) > feedTolerance {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

func TestSimFeed_FiniteDifferenceChain(t *testing.T) {
	feed := NewSimFeed(DefaultConfig().Sim, 2.0)
	const dt = 0.1

	// First step: the drift (0.1, -0.2) over 0.1s cascades through the
	// velocity, acceleration and jerk estimates.
	in := feed.Next(dt)
	near(t, in.Ball.Pos.X, 0.1, "pos.X after first step")
	near(t, in.Ball.Pos.Y, 5.8, "pos.Y after first step")
	near(t, in.Ball.Vel.X, 1.0, "vel.X after first step")
	near(t, in.Ball.Vel.Y, -2.0, "vel.Y after first step")

	// Second step: constant drift means constant velocity estimate, so
	// acceleration settles to zero and the jerk estimate cancels the
	// first step's acceleration.
	in = feed.Next(dt)
	near(t, in.Ball.Vel.X, 1.0, "vel.X after second step")
	near(t, in.Ball.Acc.X, 0.0, "acc.X after second step")
	near(t, in.Ball.Acc.Y, 0.0, "acc.Y after second step")
	near(t, in.Ball.Jerk.X, -100.0, "jerk.X after second step")
	near(t, in.Ball.Jerk.Y, 200.0, "jerk.Y after second step")

	if in.Ball.T <= dt {
		t.Errorf("timestamp %v not advancing past first step", in.Ball.T)
	}
}

func TestSimFeed_TimestampsMonotonic(t *testing.T) {
	feed := NewSimFeed(DefaultConfig().Sim, 2.0)
	prev := -1.0
	for i := 0; i < 20; i++ {
		in := feed.Next(0.1)
		if in.Ball.T <= prev {
			t.Fatalf("timestamp %v not strictly after %v", in.Ball.T, prev)
		}
		prev = in.Ball.T
	}
}

func TestSimFeed_OpponentCruisesOnItsVelocity(t *testing.T) {
	cfg := DefaultConfig().Sim
	feed := NewSimFeed(cfg, 2.0)

	in := feed.Next(0.5)
	if len(in.Opponents) != 1 {
		t.Fatalf("got %d opponents, want 1", len(in.Opponents))
	}
	near(t, in.Opponents[0].Pos.X, cfg.OpponentStart.X+cfg.OpponentVel.X*0.5, "opponent pos.X")
	near(t, in.Opponents[0].Pos.Y, cfg.OpponentStart.Y+cfg.OpponentVel.Y*0.5, "opponent pos.Y")
}

func TestSimFeed_GoalieArrivesAtCommandedTarget(t *testing.T) {
	cfg := DefaultConfig().Sim
	feed := NewSimFeed(cfg, 2.0)

	target := defense.Vec2{X: 0, Y: 0.3}
	feed.Apply(defense.Action{Kind: defense.ActionMoveToIntercept, Target: target, Teammate: -1})

	// Speed 2 m/s over 0.1s covers 0.2m: one step puts the goalie within
	// the 0.25m arrival radius and raises the intercept signal.
	in := feed.Next(0.1)
	near(t, in.Goalie.Pos.Y, 0.2, "goalie pos.Y after one step")
	if !in.Goalie.AtIntercept {
		t.Error("goalie within arrival radius should report AtIntercept")
	}

	// The next step snaps onto the target instead of overshooting.
	in = feed.Next(0.1)
	near(t, in.Goalie.Pos.Y, 0.3, "goalie pos.Y after snap")
}

func TestSimFeed_ShotStopsTheGoalie(t *testing.T) {
	feed := NewSimFeed(DefaultConfig().Sim, 2.0)
	feed.Apply(defense.Action{Kind: defense.ActionMoveToIntercept, Target: defense.Vec2{X: 5, Y: 5}, Teammate: -1})
	feed.Next(0.1)

	feed.Apply(defense.Action{Kind: defense.ActionShootToGoal, Target: defense.Vec2{X: 0, Y: -20}, Teammate: -1})
	before := feed.goaliePos
	feed.Next(0.1)

	if feed.goaliePos != before {
		t.Errorf("goalie moved after a shot: %+v -> %+v", before, feed.goaliePos)
	}
}

func TestRemoteFeed_LatestWins(t *testing.T) {
	geo := DefaultConfig().Sim.Geometry()
	feed := NewRemoteFeed(geo)

	// Before any frame arrives the feed returns only geometry.
	in := feed.Next(0.1)
	if in.Ball.T != 0 || len(in.Opponents) != 0 {
		t.Errorf("empty feed returned observations: %+v", in)
	}
	if in.Geometry.GoalCenter != geo.GoalCenter {
		t.Errorf("geometry not attached: %+v", in.Geometry)
	}

	feed.Ingest(defense.TickInput{Ball: defense.BallObservation{Pos: defense.Vec2{X: 1, Y: 1}, T: 0.1}})
	feed.Ingest(defense.TickInput{Ball: defense.BallObservation{Pos: defense.Vec2{X: 2, Y: 2}, T: 0.2}})

	in = feed.Next(0.1)
	if in.Ball.T != 0.2 || in.Ball.Pos.X != 2 {
		t.Errorf("Next returned %+v, want the freshest frame", in.Ball)
	}
	if in.Geometry.GoalCenter != geo.GoalCenter {
		t.Error("ingested frame lost the static geometry")
	}
}
