// Package geom is the vector kernel shared by the mesh packages: 2D/3D
// arithmetic, polygon measures and the orientation and circle predicates
// used by triangulation.
//
// Every function is pure. Predicates take an explicit epsilon; callers that
// have no opinion pass DefaultEpsilon.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// DefaultEpsilon is the tolerance used by the algorithm packages when their
// caller does not configure one.
const DefaultEpsilon = 1e-12

var (
	// ErrDegenerate reports a geometric configuration without a defined
	// answer: colinear circle points, a zero-length vector being normalised.
	ErrDegenerate = errors.New("geom: degenerate configuration")

	// ErrEmptyInput reports an empty point sequence.
	ErrEmptyInput = errors.New("geom: empty input")
)

// Vec3 is a point or direction in 3D space. 2D computations use X and Y and
// ignore Z.
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for Vec3{x, y, z}.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns s * v.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// LengthSq returns the squared Euclidean norm.
func (v Vec3) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length2D returns the norm of the XY projection.
func (v Vec3) Length2D() float64 {
	return math.Sqrt(v.LengthSq2D())
}

// LengthSq2D returns the squared norm of the XY projection.
func (v Vec3) LengthSq2D() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Unit returns v scaled to length one. It fails with ErrDegenerate for the
// zero vector.
func (v Vec3) Unit() (Vec3, error) {
	l := v.Length()
	if l == 0 {
		return Vec3{}, ErrDegenerate
	}
	return v.Scale(1 / l), nil
}

// Lerp returns v + t*(w - v).
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		v.X + t*(w.X-v.X),
		v.Y + t*(w.Y-v.Y),
		v.Z + t*(w.Z-v.Z),
	}
}

// Midpoint returns the point halfway between v and w.
func (v Vec3) Midpoint(w Vec3) Vec3 {
	return v.Lerp(w, 0.5)
}

// Distance returns |w - v|.
func (v Vec3) Distance(w Vec3) float64 {
	return w.Sub(v).Length()
}

// DistanceSq returns |w - v|^2.
func (v Vec3) DistanceSq(w Vec3) float64 {
	return w.Sub(v).LengthSq()
}

// DistanceSq2D returns the squared distance between the XY projections.
func (v Vec3) DistanceSq2D(w Vec3) float64 {
	return w.Sub(v).LengthSq2D()
}

// Slice returns the coordinates as []float64{X, Y, Z}.
func (v Vec3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// XY drops the Z component.
func (v Vec3) XY() Vec3 {
	return Vec3{X: v.X, Y: v.Y}
}

// Cross2D returns the cross product of the XY projections of u and v as a
// vector along Z.
func Cross2D(u, v Vec3) Vec3 {
	return Vec3{Z: u.X*v.Y - u.Y*v.X}
}

// AngleVectors returns the unsigned angle between u and v in radians.
func AngleVectors(u, v Vec3) (float64, error) {
	lu, lv := u.Length(), v.Length()
	if lu == 0 || lv == 0 {
		return 0, ErrDegenerate
	}
	c := u.Dot(v) / (lu * lv)
	return math.Acos(math.Max(-1, math.Min(1, c))), nil
}

// AngleCCW2D returns the counter-clockwise angle in [0, 2pi) that rotates
// the XY direction ref onto dir.
func AngleCCW2D(ref, dir Vec3) float64 {
	a := math.Atan2(dir.Y, dir.X) - math.Atan2(ref.Y, ref.X)
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// AngleCW2D returns the clockwise angle in [0, 2pi) that rotates the XY
// direction ref onto dir.
func AngleCW2D(ref, dir Vec3) float64 {
	return AngleCCW2D(dir, ref)
}

// BoundingBox returns the component-wise minimum and maximum of points.
func BoundingBox(points []Vec3) (min, max Vec3, err error) {
	if len(points) == 0 {
		return Vec3{}, Vec3{}, ErrEmptyInput
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = Vec3{math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z)}
		max = Vec3{math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z)}
	}
	return min, max, nil
}
