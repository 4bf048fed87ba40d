package server

import (
	"log"
	"time"

	"github.com/Team-Elite-2025/midas/defense"
)

// stampSink fills in the host-owned trace fields (run identifier and wall
// clock) before handing the record on. The core leaves both zero.
type stampSink struct {
	runID string
	next  defense.TraceSink
}

func (s stampSink) Record(rec defense.TraceRecord) {
	rec.RunID = s.runID
	rec.WallT = float64(time.Now().UnixNano()) / 1e9
	s.next.Record(rec)
}

// multiSink fans one record out to every attached sink in order.
type multiSink []defense.TraceSink

func (m multiSink) Record(rec defense.TraceRecord) {
	for _, s := range m {
		s.Record(rec)
	}
}

// hubSink pushes trace records onto the websocket broadcast channel so
// every connected dashboard sees each decision as it is made.
type hubSink struct {
	server *Server
}

func (s hubSink) Record(rec defense.TraceRecord) {
	s.server.broadcastMessage(ServerMessage{Type: MsgTypeTrace, Data: rec})
}

// logSink prints one line per decision. It is attached only in verbose
// mode; the normal path stays quiet at 10 Hz.
type logSink struct{}

func (logSink) Record(rec defense.TraceRecord) {
	log.Printf("[TRACE] seq=%d state=%s action=%s target=(%.2f,%.2f) tGoalie=%.3f tEnemy=%.3f",
		rec.Seq, rec.State, rec.Action.Kind, rec.Action.Target.X, rec.Action.Target.Y,
		rec.TGoalie, rec.TEnemy)
}
