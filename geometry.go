package compositor

import "math"

// Point is a 2D point in float32 coordinates.
type Point struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle stored as min/max bounds.
//
// The same representation is used for every coordinate space the engine
// works in (device pixels, world space, picture space); the space in use
// is documented at each site. An empty rect has inverted bounds so that
// Union works as an accumulator.
type Rect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// NewRect creates a rectangle from an origin and size.
func NewRect(x, y, w, h float32) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// EmptyRect returns an empty rectangle (inverted bounds for union operations).
func EmptyRect() Rect {
	return Rect{
		MinX: math.MaxFloat32,
		MinY: math.MaxFloat32,
		MaxX: -math.MaxFloat32,
		MaxY: -math.MaxFloat32,
	}
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Width returns the width of the rectangle.
func (r Rect) Width() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the height of the rectangle.
func (r Rect) Height() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Area returns the area of the rectangle.
func (r Rect) Area() float32 {
	return r.Width() * r.Height()
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		MinX: min32(r.MinX, other.MinX),
		MinY: min32(r.MinY, other.MinY),
		MaxX: max32(r.MaxX, other.MaxX),
		MaxY: max32(r.MaxY, other.MaxY),
	}
}

// Intersects reports whether r and other overlap with positive area.
func (r Rect) Intersects(other Rect) bool {
	return r.MinX < other.MaxX && other.MinX < r.MaxX &&
		r.MinY < other.MaxY && other.MinY < r.MaxY
}

// Intersection returns the overlapping region of r and other, or an
// empty rect if they do not overlap.
func (r Rect) Intersection(other Rect) Rect {
	out := Rect{
		MinX: max32(r.MinX, other.MinX),
		MinY: max32(r.MinY, other.MinY),
		MaxX: min32(r.MaxX, other.MaxX),
		MaxY: min32(r.MaxY, other.MaxY),
	}
	if out.IsEmpty() {
		return EmptyRect()
	}
	return out
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return r.MinX <= other.MinX && r.MinY <= other.MinY &&
		r.MaxX >= other.MaxX && r.MaxY >= other.MaxY
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float32) Rect {
	return Rect{MinX: r.MinX + dx, MinY: r.MinY + dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Scale returns r with every bound multiplied by s. Used to move between
// world space and device pixels via the device pixel scale.
func (r Rect) Scale(s float32) Rect {
	return Rect{MinX: r.MinX * s, MinY: r.MinY * s, MaxX: r.MaxX * s, MaxY: r.MaxY * s}
}

// RoundOut returns the smallest integer rectangle containing r.
func (r Rect) RoundOut() IntRect {
	return IntRect{
		MinX: int32(math.Floor(float64(r.MinX))),
		MinY: int32(math.Floor(float64(r.MinY))),
		MaxX: int32(math.Ceil(float64(r.MaxX))),
		MaxY: int32(math.Ceil(float64(r.MaxY))),
	}
}

// IntRect is an axis-aligned rectangle with integer device-pixel bounds.
type IntRect struct {
	MinX, MinY int32
	MaxX, MaxY int32
}

// NewIntRect creates an integer rectangle from an origin and size.
func NewIntRect(x, y, w, h int32) IntRect {
	return IntRect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// IsEmpty returns true if the rectangle has no area.
func (r IntRect) IsEmpty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Width returns the width of the rectangle.
func (r IntRect) Width() int32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the height of the rectangle.
func (r IntRect) Height() int32 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Area returns the area of the rectangle in square pixels.
func (r IntRect) Area() int64 {
	return int64(r.Width()) * int64(r.Height())
}

// Intersects reports whether r and other overlap with positive area.
func (r IntRect) Intersects(other IntRect) bool {
	return r.MinX < other.MaxX && other.MinX < r.MaxX &&
		r.MinY < other.MaxY && other.MinY < r.MaxY
}

// Intersection returns the overlapping region of r and other, or the
// zero rect if they do not overlap.
func (r IntRect) Intersection(other IntRect) IntRect {
	out := IntRect{
		MinX: maxI32(r.MinX, other.MinX),
		MinY: maxI32(r.MinY, other.MinY),
		MaxX: minI32(r.MaxX, other.MaxX),
		MaxY: minI32(r.MaxY, other.MaxY),
	}
	if out.IsEmpty() {
		return IntRect{}
	}
	return out
}

// ContainsRect reports whether other lies entirely inside r.
func (r IntRect) ContainsRect(other IntRect) bool {
	return r.MinX <= other.MinX && r.MinY <= other.MinY &&
		r.MaxX >= other.MaxX && r.MaxY >= other.MaxY
}

// ToRect converts the integer rectangle to float bounds.
func (r IntRect) ToRect() Rect {
	return Rect{
		MinX: float32(r.MinX), MinY: float32(r.MinY),
		MaxX: float32(r.MaxX), MaxY: float32(r.MaxY),
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
