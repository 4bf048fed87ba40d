package defense

// QuadCurve is a quadratic Bezier arc between P0 and P2 with control
// point P1.
type QuadCurve struct {
	P0 Vec2 `json:"p0"`
	P1 Vec2 `json:"p1"`
	P2 Vec2 `json:"p2"`
}

// ShotCurve builds the standard shot arc from p0 to p2: the control point
// is the chord midpoint, which keeps the curve on the straight line while
// preserving the Bezier sampling used by the clearance check.
func ShotCurve(p0, p2 Vec2) QuadCurve {
	return QuadCurve{P0: p0, P1: Midpoint(p0, p2), P2: p2}
}

// At evaluates the curve at t in [0,1]. The endpoints short-circuit so
// At(0) and At(1) return P0 and P2 bit-exactly; downstream checks rely on
// the endpoints not picking up rounding error.
func (c QuadCurve) At(t float64) Vec2 {
	if t <= 0 {
		return c.P0
	}
	if t >= 1 {
		return c.P2
	}
	u := 1 - t
	p := c.P0.Scale(u * u)
	p = p.Add(c.P1.Scale(2 * u * t))
	return p.Add(c.P2.Scale(t * t))
}

// PathChecker tests whether a shot or pass arc passes too close to any
// obstacle. Zero values are unusable; construct through NewPathChecker so
// the tunables are clamped into range.
type PathChecker struct {
	// ClearanceRadius is the minimum allowed distance between the sampled
	// curve and any obstacle. A sample exactly at the radius counts as
	// blocked.
	ClearanceRadius float64

	// Samples is the number of curve subdivisions; the checker evaluates
	// Samples+1 points including both endpoints.
	Samples int
}

// NewPathChecker clamps radius and samples into their valid ranges and
// reports each clamp as a diagnostic.
func NewPathChecker(radius float64, samples int) (PathChecker, []Diagnostic) {
	var diags []Diagnostic
	if radius < 0 {
		diags = append(diags, *configOutOfRange("clearance radius must be non-negative, clamped to 0"))
		radius = 0
	}
	if samples < 2 {
		diags = append(diags, *configOutOfRange("curve samples must be at least 2, clamped to 2"))
		samples = 2
	}
	return PathChecker{ClearanceRadius: radius, Samples: samples}, diags
}

// Blocked reports whether the shot arc from p0 to p2 comes within the
// clearance radius of any obstacle. The comparison is conservative:
// distance exactly equal to the radius blocks the path.
func (pc PathChecker) Blocked(p0, p2 Vec2, obstacles []Vec2) bool {
	if len(obstacles) == 0 {
		return false
	}
	curve := ShotCurve(p0, p2)
	rSq := pc.ClearanceRadius * pc.ClearanceRadius
	for i := 0; i <= pc.Samples; i++ {
		p := curve.At(float64(i) / float64(pc.Samples))
		for _, obs := range obstacles {
			if p.Sub(obs).LenSq() <= rSq {
				return true
			}
		}
	}
	return false
}

// ApproachPath is the planned cubic Bezier run-up from the goalie's
// current position to a commanded target. The interior control points sit
// at the thirds of the chord, which gives the motor layer a straight
// spline it can re-shape without consulting the core.
type ApproachPath struct {
	points [4]Vec2
}

// NewApproachPath plans the run-up from start to end.
func NewApproachPath(start, end Vec2) ApproachPath {
	d := end.Sub(start).Scale(1.0 / 3.0)
	return ApproachPath{points: [4]Vec2{
		start,
		start.Add(d),
		end.Sub(d),
		end,
	}}
}

// At evaluates the path at t in [0,1], with exact endpoints.
func (ap ApproachPath) At(t float64) Vec2 {
	if t <= 0 {
		return ap.points[0]
	}
	if t >= 1 {
		return ap.points[3]
	}
	u := 1 - t
	p := ap.points[0].Scale(u * u * u)
	p = p.Add(ap.points[1].Scale(3 * u * u * t))
	p = p.Add(ap.points[2].Scale(3 * u * t * t))
	return p.Add(ap.points[3].Scale(t * t * t))
}

// DeltaVector returns the movement vector from the path start to the
// position at parameter dt.
func (ap ApproachPath) DeltaVector(dt float64) Vec2 {
	return ap.At(dt).Sub(ap.points[0])
}

// ControlPoints returns a copy of the four control points in order.
func (ap ApproachPath) ControlPoints() [4]Vec2 {
	return ap.points
}
