package geom

// ClampTo keeps a restored rectangle reachable inside bounds.
//
// The size is shrunk to fit when it exceeds bounds. Each axis is then handled
// independently: a rectangle lying entirely outside bounds on that axis is
// moved back inside it, one that already overlaps is left where it is.
func ClampTo(r, bounds Rect) Rect {
	if bounds.Empty() {
		return r
	}

	r.Width = min(r.Width, bounds.Width)
	r.Height = min(r.Height, bounds.Height)

	if r.Right() <= bounds.X || r.X >= bounds.Right() {
		r.X = Bound(bounds.X, r.X, bounds.Right()-r.Width)
	}
	if r.Bottom() <= bounds.Y || r.Y >= bounds.Bottom() {
		r.Y = Bound(bounds.Y, r.Y, bounds.Bottom()-r.Height)
	}
	return r
}
