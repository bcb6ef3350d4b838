// Package geom provides the small integer and floating point geometry types
// persisted by the settings store and used by the window controller.
package geom

import "fmt"

// Point is an integer position.
type Point struct {
	X int32
	Y int32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int32) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// PointF is a floating point position.
type PointF struct {
	X float64
	Y float64
}

func (p PointF) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Size is an integer extent.
type Size struct {
	Width  int32
	Height int32
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h int32) Size {
	return Size{Width: w, Height: h}
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// SizeF is a floating point extent.
type SizeF struct {
	Width  float64
	Height float64
}

func (s SizeF) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Rect is an integer rectangle made of a top-left corner and a size.
type Rect struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// R is shorthand for Rect{X: x, Y: y, Width: w, Height: h}.
func R(x, y, w, h int32) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// RectOf builds a rectangle from its position and size.
func RectOf(pos Point, size Size) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
}

// Pos returns the top-left corner.
func (r Rect) Pos() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle extent.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Right is the exclusive right edge.
func (r Rect) Right() int32 {
	return r.X + r.Width
}

// Bottom is the exclusive bottom edge.
func (r Rect) Bottom() int32 {
	return r.Y + r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// MoveTo returns r with its top-left corner at p.
func (r Rect) MoveTo(p Point) Rect {
	r.X, r.Y = p.X, p.Y
	return r
}

// Intersect returns the overlapping area of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Intersects reports whether r and o share a non-empty area.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// CenteredIn returns r moved so that it is centered inside bounds.
func (r Rect) CenteredIn(bounds Rect) Rect {
	r.X = bounds.X + (bounds.Width-r.Width)/2
	r.Y = bounds.Y + (bounds.Height-r.Height)/2
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// RectF is a floating point rectangle.
type RectF struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r RectF) String() string {
	return fmt.Sprintf("%gx%g+%g+%g", r.Width, r.Height, r.X, r.Y)
}

// Bound clamps v into [lo, hi]. When hi < lo the lower bound wins.
func Bound(lo, v, hi int32) int32 {
	return max(lo, min(v, hi))
}
