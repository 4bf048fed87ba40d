package defense

import (
	"math"
	"testing"
)

func TestRectContains_InclusiveEdges(t *testing.T) {
	r := Rect{MinX: -10, MinY: -20, MaxX: 10, MaxY: 20}

	testCases := []struct {
		name string
		p    Vec2
		want bool
	}{
		{"Center", Vec2{0, 0}, true},
		{"OnRightEdge", Vec2{10, 0}, true},
		{"OnCorner", Vec2{-10, -20}, true},
		{"JustOutsideX", Vec2{10.0001, 0}, false},
		{"JustOutsideY", Vec2{0, -20.0001}, false},
		{"FarOutside", Vec2{100, 100}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%+v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestRectNormalize_SwapsInvertedBounds(t *testing.T) {
	r := Rect{MinX: 5, MinY: 3, MaxX: -5, MaxY: -3}.Normalize()
	if r.MinX != -5 || r.MaxX != 5 || r.MinY != -3 || r.MaxY != 3 {
		t.Errorf("normalized rect = %+v", r)
	}
}

func TestVec2IsFinite(t *testing.T) {
	if !(Vec2{1, -2}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	for _, v := range []Vec2{
		{math.NaN(), 0},
		{0, math.NaN()},
		{math.Inf(1), 0},
		{0, math.Inf(-1)},
	} {
		if v.IsFinite() {
			t.Errorf("%+v reported finite", v)
		}
	}
}

func TestCenteredBox(t *testing.T) {
	r := CenteredBox(Vec2{1, 2}, 3, 4)
	want := Rect{MinX: -2, MinY: -2, MaxX: 4, MaxY: 6}
	if r != want {
		t.Errorf("CenteredBox = %+v, want %+v", r, want)
	}
}
