package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// statusPayload is the /api/status response.
type statusPayload struct {
	RunID    string        `json:"runId"`
	Feed     string        `json:"feed"`
	TickHz   int           `json:"tickHz"`
	Snapshot FieldSnapshot `json:"snapshot"`
}

// NewRouter builds the HTTP surface: the websocket endpoint, health
// check, and the small status/config/reset API the dashboard uses.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.HandleWebSocket)
	r.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.HandleConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/reset", s.HandleReset).Methods(http.MethodPost)
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleStatus reports the run identity and the latest field snapshot.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	payload := statusPayload{
		RunID:    s.runID,
		Feed:     s.cfg.Feed,
		TickHz:   s.cfg.TickHz,
		Snapshot: s.Snapshot(),
	}
	writeJSON(w, payload)
}

// HandleConfig reports the active configuration, including the
// normalized core tunables the arbiter actually runs with.
func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	cfg := *s.cfg
	s.mu.RUnlock()
	cfg.Defense = normalizedDefense(s)
	writeJSON(w, cfg)
}

// HandleReset forces the arbiter back to idle.
func (s *Server) HandleReset(w http.ResponseWriter, r *http.Request) {
	s.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func normalizedDefense(s *Server) DefenseConfig {
	core := s.arbiter.Config()
	return DefenseConfig{
		InterceptThreshold: core.InterceptThreshold,
		CorrectionGain:     core.CorrectionGain,
		PredictionHorizon:  core.PredictionHorizon,
		ClearanceRadius:    core.ClearanceRadius,
		CurveSamples:       core.CurveSamples,
		GoalieSpeed:        core.GoalieSpeed,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
