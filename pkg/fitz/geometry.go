// Package fitz provides a MuPDF-style document API backed by a pure-Go
// PDF engine: documents, pages, pixmaps, structured text, outlines and
// links.
package fitz

import (
	"fmt"
	"math"
)

// Point is a point in either user or device space.
type Point struct {
	X, Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Rect is an axis-aligned rectangle. X0,Y0 is the minimum corner and
// X1,Y1 the maximum corner when the rectangle is normalised.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X0, r.Y0, r.X1, r.Y1)
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the height of the rectangle.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool { return r.X0 >= r.X1 || r.Y0 >= r.Y1 }

// Normalize returns the rectangle with its corners ordered.
func (r Rect) Normalize() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Union returns the smallest rectangle containing both r and s. An
// empty rectangle does not contribute.
func (r Rect) Union(s Rect) Rect {
	if r.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return r
	}
	return Rect{
		math.Min(r.X0, s.X0), math.Min(r.Y0, s.Y0),
		math.Max(r.X1, s.X1), math.Max(r.Y1, s.Y1),
	}
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X < r.X1 && p.Y >= r.Y0 && p.Y < r.Y1
}

// Quad is a quadrilateral, usually a transformed rectangle. The corner
// names follow reading order: upper-left, upper-right, lower-left,
// lower-right.
type Quad struct {
	UL, UR, LL, LR Point
}

// QuadFromRect returns the axis-aligned quad covering r.
func QuadFromRect(r Rect) Quad {
	return Quad{
		UL: Point{r.X0, r.Y0},
		UR: Point{r.X1, r.Y0},
		LL: Point{r.X0, r.Y1},
		LR: Point{r.X1, r.Y1},
	}
}

// Bounds returns the bounding rectangle of the quad.
func (q Quad) Bounds() Rect {
	r := Rect{q.UL.X, q.UL.Y, q.UL.X, q.UL.Y}
	for _, p := range []Point{q.UR, q.LL, q.LR} {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r
}

// Matrix is a row-major 2x3 affine transform:
//
//	/ A B 0 \
//	| C D 0 |
//	\ E F 1 /
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

// Rotate returns a rotation matrix for an angle in degrees,
// anticlockwise in PDF user space.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	return Matrix{A: c, B: s, C: -s, D: c}
}

// Concat returns m followed by n, so that transforming by the result is
// the same as transforming by m and then by n.
func (m Matrix) Concat(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
		E: m.E*n.A + m.F*n.C + n.E,
		F: m.E*n.B + m.F*n.D + n.F,
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: p.X*m.A + p.Y*m.C + m.E,
		Y: p.X*m.B + p.Y*m.D + m.F,
	}
}

// TransformRect applies the matrix to a rectangle and returns the
// bounding box of the transformed corners.
func (m Matrix) TransformRect(r Rect) Rect {
	p0 := m.TransformPoint(Point{r.X0, r.Y0})
	p1 := m.TransformPoint(Point{r.X1, r.Y0})
	p2 := m.TransformPoint(Point{r.X0, r.Y1})
	p3 := m.TransformPoint(Point{r.X1, r.Y1})
	out := Rect{p0.X, p0.Y, p0.X, p0.Y}
	for _, p := range []Point{p1, p2, p3} {
		out.X0 = math.Min(out.X0, p.X)
		out.Y0 = math.Min(out.Y0, p.Y)
		out.X1 = math.Max(out.X1, p.X)
		out.Y1 = math.Max(out.Y1, p.Y)
	}
	return out
}

// TransformQuad applies the matrix to each corner of a quad.
func (m Matrix) TransformQuad(q Quad) Quad {
	return Quad{
		UL: m.TransformPoint(q.UL),
		UR: m.TransformPoint(q.UR),
		LL: m.TransformPoint(q.LL),
		LR: m.TransformPoint(q.LR),
	}
}

// Expansion returns a scalar estimate of how much the matrix scales
// distances, used for glyph size decisions.
func (m Matrix) Expansion() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}
