package server

import (
	"log"

	"github.com/Team-Elite-2025/midas/defense"
)

// Debug flags for various subsystems
var (
	DebugDecisions = false // Set to true to log every state/action decision
)

// logDecision logs per-tick decisions when debugging is enabled
func logDecision(tick uint64, state, action string) {
	if DebugDecisions {
		log.Printf("[DECISION DEBUG] tick=%d state=%s action=%s", tick, state, action)
	}
}

// logDiagnostic logs core diagnostics; dropped samples are frequent under
// a flaky feed, so they stay behind the debug flag while clamp warnings
// always print.
func logDiagnostic(d defense.Diagnostic) {
	if d.Code == defense.DiagInvalidObservation && !DebugDecisions {
		return
	}
	log.Printf("[DIAG] %s: %s", d.Code, d.Detail)
}
