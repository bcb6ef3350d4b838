package geom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gaurav-Gosain/winstate/internal/geom"
)

// =============================================================================
// Rect Tests
// =============================================================================

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b geom.Rect
		want geom.Rect
	}{
		{"overlap", geom.R(0, 0, 100, 100), geom.R(50, 50, 100, 100), geom.R(50, 50, 50, 50)},
		{"contained", geom.R(0, 0, 100, 100), geom.R(10, 10, 5, 5), geom.R(10, 10, 5, 5)},
		{"touching edges", geom.R(0, 0, 100, 100), geom.R(100, 0, 10, 10), geom.Rect{}},
		{"disjoint", geom.R(0, 0, 10, 10), geom.R(-50, -50, 10, 10), geom.Rect{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Intersect(tc.b))
			assert.Equal(t, !tc.want.Empty(), tc.a.Intersects(tc.b))
		})
	}
}

func TestRectCenteredIn(t *testing.T) {
	r := geom.R(500, 500, 200, 100).CenteredIn(geom.R(0, 0, 1000, 800))
	assert.Equal(t, geom.R(400, 350, 200, 100), r)
}

func TestRectOf(t *testing.T) {
	r := geom.RectOf(geom.Pt(3, 4), geom.Sz(5, 6))
	assert.Equal(t, geom.Pt(3, 4), r.Pos())
	assert.Equal(t, geom.Sz(5, 6), r.Size())
	assert.Equal(t, int32(8), r.Right())
	assert.Equal(t, int32(10), r.Bottom())
}

func TestBound(t *testing.T) {
	assert.Equal(t, int32(5), geom.Bound(0, 5, 10))
	assert.Equal(t, int32(0), geom.Bound(0, -5, 10))
	assert.Equal(t, int32(10), geom.Bound(0, 50, 10))
	assert.Equal(t, int32(3), geom.Bound(3, 1, 2), "lower bound wins on inverted range")
}

// =============================================================================
// Clamp Tests
// =============================================================================

func TestClampToLeavesVisibleRectAlone(t *testing.T) {
	screen := geom.R(0, 0, 1920, 1080)
	r := geom.R(-100, 900, 800, 600)
	assert.Equal(t, r, geom.ClampTo(r, screen), "partially visible rectangles are kept")
}

func TestClampToShrinksOversizedRect(t *testing.T) {
	screen := geom.R(0, 0, 1280, 720)
	got := geom.ClampTo(geom.R(10, 10, 4000, 3000), screen)
	assert.Equal(t, geom.R(10, 10, 1280, 720), got)
}

func TestClampToBringsBackOffscreenRects(t *testing.T) {
	screen := geom.R(0, 0, 1920, 1080)

	tests := []struct {
		name string
		in   geom.Rect
	}{
		{"far left", geom.R(-5000, 100, 800, 600)},
		{"far right", geom.R(3840, 100, 800, 600)},
		{"above", geom.R(100, -2000, 800, 600)},
		{"below", geom.R(100, 1080, 800, 600)},
		{"corner", geom.R(-32000, -32000, 160, 28)},
		{"removed monitor", geom.R(2560, 1440, 1920, 1080)},
		{"just left", geom.R(-800, 0, 800, 600)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			is := assert.New(t)
			is.False(tc.in.Intersects(screen), "precondition: starts off-screen")

			got := geom.ClampTo(tc.in, screen)
			is.True(got.Intersects(screen), "clamped %v must intersect %v", got, screen)
			is.Equal(tc.in.Size(), got.Size())
		})
	}
}

func TestClampToOffsetDesktop(t *testing.T) {
	// Virtual desktop whose origin is not (0,0), e.g. a monitor left of primary.
	desktop := geom.R(-1920, 0, 3840, 1080)
	got := geom.ClampTo(geom.R(-4000, 50, 640, 480), desktop)
	assert.Equal(t, geom.R(-1920, 50, 640, 480), got)
}

func TestClampToEmptyBounds(t *testing.T) {
	r := geom.R(-10, -10, 5, 5)
	assert.Equal(t, r, geom.ClampTo(r, geom.Rect{}))
}
