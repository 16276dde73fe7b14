package scene

import "math"

// Matrix is a 2D affine transform:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Compose builds translate(x, y) · rotate(deg) · scale(sx, sy).
func Compose(x, y, deg, sx, sy float64) Matrix {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{
		A: cos * sx,
		B: sin * sx,
		C: -sin * sy,
		D: cos * sy,
		E: x,
		F: y,
	}
}

// Multiply returns m · n (n is applied first).
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Invert returns the inverse transform. ok is false for degenerate
// matrices (zero scale on an axis).
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 || math.IsNaN(det) {
		return Matrix{}, false
	}
	return Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Bounds) MaxX() float64 { return b.X + b.Width }
func (b Bounds) MaxY() float64 { return b.Y + b.Height }

// Contains reports whether the point lies inside b (edges included).
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x <= b.MaxX() && y >= b.Y && y <= b.MaxY()
}

// Intersects reports whether a and b overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.X < o.MaxX() && b.MaxX() > o.X &&
		b.Y < o.MaxY() && b.MaxY() > o.Y
}

// Union returns the smallest box containing both a and b.
func (b Bounds) Union(o Bounds) Bounds {
	minX := math.Min(b.X, o.X)
	minY := math.Min(b.Y, o.Y)
	maxX := math.Max(b.MaxX(), o.MaxX())
	maxY := math.Max(b.MaxY(), o.MaxY())
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// UnionAll folds Union over boxes. ok is false when boxes is empty.
func UnionAll(boxes []Bounds) (Bounds, bool) {
	if len(boxes) == 0 {
		return Bounds{}, false
	}
	u := boxes[0]
	for _, b := range boxes[1:] {
		u = u.Union(b)
	}
	return u, true
}

// transformBox maps the local box through m and returns the AABB of the
// four transformed corners.
func transformBox(m Matrix, local Bounds) Bounds {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = m.Apply(local.X, local.Y)
	xs[1], ys[1] = m.Apply(local.MaxX(), local.Y)
	xs[2], ys[2] = m.Apply(local.MaxX(), local.MaxY())
	xs[3], ys[3] = m.Apply(local.X, local.MaxY())

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
