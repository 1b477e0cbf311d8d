package geom

import "math"

// Circle is an XY circle stored by centre and squared radius, the form the
// Delaunay inner loop compares against.
type Circle struct {
	Center   Vec3
	RadiusSq float64
}

// Radius returns the circle radius.
func (c Circle) Radius() float64 {
	return math.Sqrt(c.RadiusSq)
}

// CircleFromPoints returns the XY circle through a, b and c. It fails with
// ErrDegenerate when the points are colinear within eps.
func CircleFromPoints(a, b, c Vec3, eps float64) (Circle, error) {
	ax, ay := a.X, a.Y
	bx, by := b.X, b.Y
	cx, cy := c.X, c.Y

	e := bx - ax
	f := by - ay
	g := cx - ax
	h := cy - ay
	i := e*(ax+bx) + f*(ay+by)
	j := g*(ax+cx) + h*(ay+cy)
	k := 2 * (e*(cy-by) - f*(cx-bx))
	if math.Abs(k) <= eps {
		return Circle{}, ErrDegenerate
	}
	center := Vec3{X: (h*i - f*j) / k, Y: (e*j - g*i) / k}
	return Circle{Center: center, RadiusSq: center.DistanceSq2D(a)}, nil
}

// IsPointInCircle reports whether p lies strictly inside c, by at least eps
// in squared distance.
func IsPointInCircle(p Vec3, c Circle, eps float64) bool {
	return p.DistanceSq2D(c.Center) < c.RadiusSq-eps
}

// IsPointInCircumcircle reports whether p lies strictly inside the circle
// through a, b and c. Colinear a, b, c have no circle and report false.
func IsPointInCircumcircle(p, a, b, c Vec3, eps float64) bool {
	circle, err := CircleFromPoints(a, b, c, eps)
	if err != nil {
		return false
	}
	return IsPointInCircle(p, circle, eps)
}
