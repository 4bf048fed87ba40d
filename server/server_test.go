package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTick_AdvancesSnapshotAndDecides(t *testing.T) {
	s := NewServer(DefaultConfig())
	defer s.Shutdown()

	// The default scripted match opens with the ball inside the target
	// box and a rival slow enough to lose the time race: two ticks take
	// the arbiter through tracking into intercepting.
	s.runTick(0.1)
	snap := s.Snapshot()
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, "tracking", snap.State)

	s.runTick(0.1)
	snap = s.Snapshot()
	assert.Equal(t, uint64(2), snap.Tick)
	assert.Equal(t, "intercepting", snap.State)
	assert.Equal(t, s.RunID(), snap.RunID)
	require.Len(t, snap.Rivals, 1)
}

func TestRunTick_BroadcastsTraceAndField(t *testing.T) {
	s := NewServer(DefaultConfig())
	defer s.Shutdown()

	s.runTick(0.1)

	var types []string
	for len(s.broadcast) > 0 {
		types = append(types, (<-s.broadcast).Type)
	}
	assert.Equal(t, []string{MsgTypeTrace, MsgTypeField}, types)
}

func TestReset_BroadcastsAndReturnsToIdle(t *testing.T) {
	s := NewServer(DefaultConfig())
	defer s.Shutdown()

	s.runTick(0.1)
	s.runTick(0.1)
	s.Reset()

	// Drain the broadcast queue; the reset notification must be last.
	var last ServerMessage
	for len(s.broadcast) > 0 {
		last = <-s.broadcast
	}
	assert.Equal(t, MsgTypeReset, last.Type)

	s.runTick(0.1)
	assert.Equal(t, "tracking", s.Snapshot().State)
}

func TestIngestFrame_RefusedOnSimFeed(t *testing.T) {
	s := NewServer(DefaultConfig())
	defer s.Shutdown()

	err := s.ingestFrame([]byte(`{"ball": {"pos": {"x": 0, "y": 0}, "t": 0}, "goalie": {"pos": {"x": 0, "y": 0}, "t": 0}}`))
	assert.ErrorIs(t, err, errSimFeedActive)
}

func TestIngestFrame_RemoteFeedAcceptsValidFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Feed = FeedRemote
	s := NewServer(cfg)
	defer s.Shutdown()

	require.Error(t, s.ingestFrame([]byte(`{"goalie": {"pos": {"x": 0, "y": 0}, "t": 0}}`)),
		"schema violations must be rejected before reaching the feed")

	frame := `{"ball": {"pos": {"x": 1, "y": 2}, "t": 0.5}, "goalie": {"pos": {"x": 0, "y": 0}, "t": 0.5}}`
	require.NoError(t, s.ingestFrame([]byte(frame)))

	in := s.remote.Next(0.1)
	assert.Equal(t, 0.5, in.Ball.T)
	assert.Equal(t, 1.0, in.Ball.Pos.X)
}
