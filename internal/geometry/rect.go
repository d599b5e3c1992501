// Package geometry provides screen-coordinate rectangle math shared by the
// positioner, overlap tracking, and the platform backend.
package geometry

// Rect is a rectangle in screen coordinates, matching the Win32 RECT
// convention: Right and Bottom are exclusive.
type Rect struct {
	Left   int32 `json:"left"`
	Top    int32 `json:"top"`
	Right  int32 `json:"right"`
	Bottom int32 `json:"bottom"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int32 {
	return r.Right - r.Left
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int32 {
	return r.Bottom - r.Top
}

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Intersection returns the overlapping region of r and other. The zero Rect
// is returned when they do not overlap.
func (r Rect) Intersection(other Rect) Rect {
	out := Rect{
		Left:   max32(r.Left, other.Left),
		Top:    max32(r.Top, other.Top),
		Right:  min32(r.Right, other.Right),
		Bottom: min32(r.Bottom, other.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Intersects reports whether r and other share any area.
func (r Rect) Intersects(other Rect) bool {
	return !r.Intersection(other).Empty()
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
