package defense

// TargetGeometry is the immutable pitch geometry a tick is decided
// against: the monitored box in front of the goal, the goal centre, the
// optimal defensive position held in safe mode, and the positions of any
// teammates available for a pass.
type TargetGeometry struct {
	TargetBox  Rect   `json:"targetBox"`
	GoalCenter Vec2   `json:"goalCenter"`
	GuardPoint Vec2   `json:"guardPoint"`
	Teammates  []Vec2 `json:"teammates,omitempty"`
}

// TickInput is everything one control cycle feeds the arbiter: the ball
// sample, the fresh ordered opponent samples, the goalie's own pose, and
// the geometry to decide against.
type TickInput struct {
	Ball      BallObservation       `json:"ball"`
	Opponents []OpponentObservation `json:"opponents"`
	Goalie    GoalieObservation     `json:"goalie"`
	Geometry  TargetGeometry        `json:"geometry"`
}

// GoalieMotion estimates how long the goalie needs to move between two
// points. The goalie's real kinematic model lives in the motor layer;
// the core only consumes its time estimates.
type GoalieMotion interface {
	TimeToReach(from, to Vec2) float64
}

// FixedSpeedMotion is the default motion model: straight-line travel at a
// constant speed.
type FixedSpeedMotion struct {
	Speed float64
}

func (m FixedSpeedMotion) TimeToReach(from, to Vec2) float64 {
	speed := m.Speed
	if speed < epsilonSpeed {
		speed = epsilonSpeed
	}
	return from.DistanceTo(to) / speed
}

// Option configures an Arbiter at construction.
type Option func(*Arbiter)

// WithTraceSink routes the per-tick trace records to sink.
func WithTraceSink(sink TraceSink) Option {
	return func(a *Arbiter) { a.sink = sink }
}

// WithGoalieMotion replaces the default fixed-speed goalie motion model.
func WithGoalieMotion(m GoalieMotion) Option {
	return func(a *Arbiter) { a.motion = m }
}

// WithDiagnosticFunc registers a callback invoked for every diagnostic the
// arbiter raises, including the configuration clamps applied during
// construction.
func WithDiagnosticFunc(fn func(Diagnostic)) Option {
	return func(a *Arbiter) { a.onDiag = fn }
}

// Arbiter is the per-tick decision engine. It is strictly single-caller:
// one Tick at a time, serialized by the control loop that owns it. It
// holds no locks and never blocks; every tick is bounded arithmetic over
// the current observations and the immediately prior state.
type Arbiter struct {
	cfg     Config
	checker PathChecker
	tracker *BallTracker
	motion  GoalieMotion
	sink    TraceSink
	onDiag  func(Diagnostic)

	state      DecisionState
	lastAction Action
	seq        uint64
}

// NewArbiter builds an arbiter from cfg, clamping out-of-range tunables to
// their nearest valid bound. Clamps surface through the diagnostic
// callback, never as errors.
func NewArbiter(cfg Config, opts ...Option) *Arbiter {
	norm, diags := cfg.normalize()
	a := &Arbiter{
		cfg:        norm,
		checker:    PathChecker{ClearanceRadius: norm.ClearanceRadius, Samples: norm.CurveSamples},
		tracker:    NewBallTracker(norm.CorrectionGain),
		motion:     FixedSpeedMotion{Speed: norm.GoalieSpeed},
		sink:       NopSink{},
		state:      StateIdle,
		lastAction: Action{Kind: ActionHoldPosition, Teammate: -1},
	}
	for _, opt := range opts {
		opt(a)
	}
	for _, d := range diags {
		a.report(d)
	}
	return a
}

// Config returns the normalized tunables the arbiter runs with.
func (a *Arbiter) Config() Config {
	return a.cfg
}

// State returns the decision state after the most recent tick.
func (a *Arbiter) State() DecisionState {
	return a.state
}

// LastAction returns the action emitted by the most recent tick.
func (a *Arbiter) LastAction() Action {
	return a.lastAction
}

// rivalOutpaced is the interception predicate: the goalie contests the
// ball only when the fastest rival needs strictly more than threshold
// times the goalie's own travel time. Equality is a tie the rival wins,
// so an exact match falls through to safe mode.
func rivalOutpaced(tEnemy, tGoalie, threshold float64) bool {
	return tEnemy > threshold*tGoalie
}

// Tick runs one decision cycle and always returns a defined action; the
// worst degradation is holding the current position. Invalid samples are
// dropped with diagnostics and the prior state decides instead. The
// internal order is fixed: ball update, opponent rebuild, prediction,
// time-ratio comparison, state transition, conditional clearance checks,
// trace emission.
func (a *Arbiter) Tick(in TickInput) (Action, DecisionState) {
	a.seq++
	var diags []Diagnostic

	if d := a.tracker.Observe(in.Ball); d != nil {
		diags = append(diags, *d)
	}

	tracks, dropDiags := buildTracks(in.Opponents)
	diags = append(diags, dropDiags...)

	predicted := a.tracker.Predict(a.cfg.PredictionHorizon)

	box := in.Geometry.TargetBox.Normalize()
	inBox := box.Contains(predicted)

	tGoalie := a.motion.TimeToReach(in.Goalie.Pos, predicted)
	tEnemy := minTimeToReach(tracks, predicted)

	rec := TraceRecord{
		Seq:            a.seq,
		ObsT:           in.Ball.T,
		PrevState:      a.state.String(),
		Predicted:      predicted,
		InterceptPoint: predicted,
		InTargetBox:    inBox,
		TGoalie:        tGoalie,
		TEnemy:         tEnemy,
		Threshold:      a.cfg.InterceptThreshold,
		PassTarget:     -1,
		Opponents:      len(tracks),
	}

	var action Action
	if !inBox {
		// The play left the monitored region; every state rests back to
		// idle and the goalie holds where it stands.
		a.state = StateIdle
		action = holdAt(in.Goalie.Pos)
	} else {
		switch a.state {
		case StateIdle:
			a.state = StateTracking
			action = holdAt(in.Geometry.GuardPoint)

		case StateTracking:
			if rivalOutpaced(tEnemy, tGoalie, a.cfg.InterceptThreshold) {
				a.state = StateIntercepting
				action = a.interceptAction(in.Goalie.Pos, predicted, &rec)
			} else {
				a.state = StateSafeMode
				action = holdAt(in.Geometry.GuardPoint)
			}

		case StateSafeMode:
			// Safe mode is sticky for the rest of the play: once the rival
			// won the time race the goalie guards its post until the ball
			// leaves the box, rather than oscillating with the ratio.
			action = holdAt(in.Geometry.GuardPoint)

		case StateIntercepting:
			if in.Goalie.AtIntercept {
				action = a.counterAttack(in, tracks, &rec)
			} else {
				action = a.interceptAction(in.Goalie.Pos, predicted, &rec)
			}

		case StateCounterAttack:
			// The shot window can open or close while the play is live, so
			// clearance is re-evaluated every tick.
			action = a.counterAttack(in, tracks, &rec)
		}
	}

	a.lastAction = action
	rec.State = a.state.String()
	rec.Action = action
	rec.Diagnostics = diags
	for _, d := range diags {
		a.report(d)
	}
	a.sink.Record(rec)

	return action, a.state
}

// interceptAction commands a move to the predicted point and plans the
// run-up spline the motor layer will follow.
func (a *Arbiter) interceptAction(from, predicted Vec2, rec *TraceRecord) Action {
	path := NewApproachPath(from, predicted)
	cp := path.ControlPoints()
	rec.Approach = cp[:]
	return Action{Kind: ActionMoveToIntercept, Target: predicted, Teammate: -1}
}

// counterAttack picks the offensive action once the goalie holds the ball:
// shoot if the arc to the goal is clear, otherwise pass to the nearest
// teammate with a clear arc, otherwise fall back to safe-mode holding.
// Current opponent positions are the obstacles.
func (a *Arbiter) counterAttack(in TickInput, tracks []OpponentTrack, rec *TraceRecord) Action {
	obstacles := make([]Vec2, len(tracks))
	for i, t := range tracks {
		obstacles[i] = t.Pos
	}

	goalBlocked := a.clearanceBlocked(in.Goalie.Pos, in.Geometry.GoalCenter, obstacles)
	rec.GoalBlocked = goalBlocked
	if !goalBlocked {
		a.state = StateCounterAttack
		return Action{Kind: ActionShootToGoal, Target: in.Geometry.GoalCenter, Teammate: -1}
	}

	best := -1
	bestDist := 0.0
	for i, tm := range in.Geometry.Teammates {
		if a.clearanceBlocked(in.Goalie.Pos, tm, obstacles) {
			continue
		}
		d := in.Goalie.Pos.DistanceTo(tm)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		a.state = StateCounterAttack
		rec.PassTarget = best
		return Action{Kind: ActionPassToTeammate, Target: in.Geometry.Teammates[best], Teammate: best}
	}

	// Nothing is clear: hold the ball defensively until a window opens.
	a.state = StateSafeMode
	return holdAt(in.Goalie.Pos)
}

// clearanceBlocked wraps the path checker with the degenerate-geometry
// guard: a target on top of the goalie is a zero-length arc, reported as
// a diagnostic and still checked conservatively.
func (a *Arbiter) clearanceBlocked(from, to Vec2, obstacles []Vec2) bool {
	if from.DistanceTo(to) < epsilonSpeed {
		a.report(*degenerateGeometry("clearance target coincides with goalie position"))
	}
	return a.checker.Blocked(from, to, obstacles)
}

// Reset forces the machine back to idle and clears the prediction
// correction history and the last action. This is the cancellation path:
// the next tick behaves like the first of a fresh run.
func (a *Arbiter) Reset() {
	a.state = StateIdle
	a.tracker.Reset()
	a.lastAction = Action{Kind: ActionHoldPosition, Teammate: -1}
}

func (a *Arbiter) report(d Diagnostic) {
	if a.onDiag != nil {
		a.onDiag(d)
	}
}
