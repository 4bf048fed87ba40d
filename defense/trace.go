package defense

// DecisionState is the arbiter's per-tick state. StateIdle is the rest
// state; the machine has no terminal state and runs for as long as the
// control loop keeps ticking.
type DecisionState int

const (
	StateIdle DecisionState = iota
	StateTracking
	StateIntercepting
	StateSafeMode
	StateCounterAttack
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateTracking:      "tracking",
	StateIntercepting:  "intercepting",
	StateSafeMode:      "safe_mode",
	StateCounterAttack: "counter_attack",
}

func (s DecisionState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ActionKind identifies what the motor layer should do this tick.
type ActionKind string

const (
	ActionHoldPosition    ActionKind = "hold_position"
	ActionMoveToIntercept ActionKind = "move_to_intercept"
	ActionPassToTeammate  ActionKind = "pass_to_teammate"
	ActionShootToGoal     ActionKind = "shoot_to_goal"
)

// Action is the single output of a tick. Target always carries the
// actuation point: the hold point, the intercept point, the receiving
// teammate's position, or the goal centre. Teammate indexes into the
// tick's TargetGeometry.Teammates and is -1 for everything but a pass.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Target   Vec2       `json:"target"`
	Teammate int        `json:"teammate"`
}

func holdAt(p Vec2) Action {
	return Action{Kind: ActionHoldPosition, Target: p, Teammate: -1}
}

// TraceRecord is the structured trace emitted once per tick: the decision,
// the action, and the intermediate values that produced them. RunID and
// WallT are left zero by the core; hosts stamp them on the way out.
type TraceRecord struct {
	Seq   uint64  `json:"seq"`
	RunID string  `json:"runId,omitempty"`
	WallT float64 `json:"wallT,omitempty"`

	ObsT      float64 `json:"obsT"`
	State     string  `json:"state"`
	PrevState string  `json:"prevState"`
	Action    Action  `json:"action"`

	Predicted      Vec2    `json:"predicted"`
	InterceptPoint Vec2    `json:"interceptPoint"`
	InTargetBox    bool    `json:"inTargetBox"`
	TGoalie        float64 `json:"tGoalie"`
	TEnemy         float64 `json:"tEnemy"`
	Threshold      float64 `json:"threshold"`
	GoalBlocked    bool    `json:"goalBlocked"`
	PassTarget     int     `json:"passTarget"`
	Opponents      int     `json:"opponents"`

	// Approach carries the planned run-up control points for
	// move-to-intercept actions so dashboards and the motor layer can draw
	// or follow the spline. Empty for every other action kind.
	Approach []Vec2 `json:"approach,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// TraceSink receives one record per tick. Sinks must not block: the
// arbiter calls Record synchronously inside the control loop. The core
// never formats output itself; rendering belongs to the sink.
type TraceSink interface {
	Record(rec TraceRecord)
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Record(TraceRecord) {}
