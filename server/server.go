package server

import (
	"log"
	"sync"
	"time"

	"github.com/Team-Elite-2025/midas/defense"
	"github.com/google/uuid"
)

// FieldSnapshot is the per-tick field state broadcast to dashboards:
// where everything is, what the arbiter decided, and the pitch geometry
// to draw it against.
type FieldSnapshot struct {
	Tick     uint64                        `json:"tick"`
	RunID    string                        `json:"runId"`
	State    string                        `json:"state"`
	Action   defense.Action                `json:"action"`
	Ball     defense.BallObservation       `json:"ball"`
	Goalie   defense.GoalieObservation     `json:"goalie"`
	Rivals   []defense.OpponentObservation `json:"rivals"`
	Geometry defense.TargetGeometry        `json:"geometry"`
}

// Server hosts the decision engine: it owns the control loop, the
// observation feed, the trace sinks and the websocket clients. The
// arbiter itself is single-caller; the server's mutex is what serializes
// ticks against resets and status reads.
type Server struct {
	mu      sync.RWMutex
	cfg     *Config
	arbiter *defense.Arbiter
	feed    ObservationSource
	act     Actuator
	remote  *RemoteFeed
	kafka   *kafkaSink

	clients    map[int]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan ServerMessage
	nextID     int

	runID    string
	ticks    uint64
	lastTick time.Time
	snapshot FieldSnapshot

	done     chan struct{}
	stopOnce sync.Once
}

// NewServer wires a server from cfg: the feed, the sink chain and the
// arbiter. Config clamps raised by the core are logged as warnings.
func NewServer(cfg *Config) *Server {
	s := &Server{
		cfg:        cfg,
		clients:    make(map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ServerMessage, 256),
		runID:      uuid.NewString(),
		done:       make(chan struct{}),
	}

	sinks := multiSink{hubSink{server: s}}
	if cfg.Verbose {
		sinks = append(sinks, logSink{})
	}
	if cfg.Kafka.Enabled {
		s.kafka = NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sinks = append(sinks, s.kafka)
	}

	s.arbiter = defense.NewArbiter(cfg.Defense.ToCore(),
		defense.WithTraceSink(stampSink{runID: s.runID, next: sinks}),
		defense.WithDiagnosticFunc(func(d defense.Diagnostic) {
			logDiagnostic(d)
		}),
	)

	switch cfg.Feed {
	case FeedRemote:
		remote := NewRemoteFeed(cfg.Sim.Geometry())
		s.feed, s.act, s.remote = remote, remote, remote
	default:
		sim := NewSimFeed(cfg.Sim, s.arbiter.Config().GoalieSpeed)
		s.feed, s.act = sim, sim
	}

	return s
}

// RunID returns the identifier stamped on every trace record this server
// emits.
func (s *Server) RunID() string {
	return s.runID
}

// Run starts the control loop and then serves client events until
// Shutdown.
func (s *Server) Run() {
	go s.controlLoop()

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Printf("Client %d connected", client.ID)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				close(client.send)
			}
			s.mu.Unlock()
			log.Printf("Client %d disconnected", client.ID)

		case message := <-s.broadcast:
			s.mu.RLock()
			for _, client := range s.clients {
				select {
				case client.send <- message:
				default:
					log.Printf("Warning: Client %d send buffer full, skipping broadcast", client.ID)
				}
			}
			s.mu.RUnlock()

		case <-s.done:
			return
		}
	}
}

// controlLoop drives the arbiter at the configured cadence. Each cycle
// pulls fresh observations, runs one tick, feeds the chosen action back
// to the actuator and broadcasts the field snapshot.
func (s *Server) controlLoop() {
	interval := time.Second / time.Duration(s.cfg.TickHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.lastTick = time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(s.lastTick).Seconds()
			s.lastTick = now
			s.runTick(dt)
		case <-s.done:
			return
		}
	}
}

func (s *Server) runTick(dt float64) {
	s.mu.Lock()
	in := s.feed.Next(dt)
	action, state := s.arbiter.Tick(in)
	s.act.Apply(action)

	s.ticks++
	s.snapshot = FieldSnapshot{
		Tick:     s.ticks,
		RunID:    s.runID,
		State:    state.String(),
		Action:   action,
		Ball:     in.Ball,
		Goalie:   in.Goalie,
		Rivals:   in.Opponents,
		Geometry: in.Geometry,
	}
	snap := s.snapshot
	s.mu.Unlock()

	logDecision(snap.Tick, snap.State, string(action.Kind))
	s.broadcastMessage(ServerMessage{Type: MsgTypeField, Data: snap})
}

// Reset forces the arbiter back to idle. Issued from the HTTP API or a
// websocket control message.
func (s *Server) Reset() {
	s.mu.Lock()
	s.arbiter.Reset()
	s.mu.Unlock()
	log.Printf("Arbiter reset to idle (run %s)", s.runID)
	s.broadcastMessage(ServerMessage{Type: MsgTypeReset, Data: nil})
}

// Snapshot returns the most recent field snapshot.
func (s *Server) Snapshot() FieldSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ingestFrame validates and applies a pushed observation frame. Only
// meaningful with the remote feed; with the sim feed frames are refused.
func (s *Server) ingestFrame(data []byte) error {
	if s.remote == nil {
		return errSimFeedActive
	}
	if err := validateFrame(data); err != nil {
		return err
	}
	in, err := decodeFrame(data)
	if err != nil {
		return err
	}
	s.remote.Ingest(in)
	return nil
}

func (s *Server) broadcastMessage(msg ServerMessage) {
	select {
	case s.broadcast <- msg:
	default:
		log.Printf("Warning: broadcast buffer full, dropping %s message", msg.Type)
	}
}

// Shutdown stops the control loop and the background sinks. Safe to call
// more than once.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.kafka != nil {
			if err := s.kafka.Close(); err != nil {
				log.Printf("kafka sink close: %v", err)
			}
		}
	})
}
