package geom

import "math"

// Centroid returns the arithmetic mean of points.
func Centroid(points []Vec3) (Vec3, error) {
	if len(points) == 0 {
		return Vec3{}, ErrEmptyInput
	}
	var c Vec3
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(points))), nil
}

// CenterOfMassPolygon returns the centre of mass of the polygon outline:
// the mean of the edge midpoints weighted by edge length. A polygon whose
// edges all have zero length falls back to the centroid.
func CenterOfMassPolygon(polygon []Vec3) (Vec3, error) {
	if len(polygon) == 0 {
		return Vec3{}, ErrEmptyInput
	}
	var sum Vec3
	var total float64
	n := len(polygon)
	for i := range polygon {
		a, b := polygon[i], polygon[(i+1)%n]
		l := a.Distance(b)
		sum = sum.Add(a.Midpoint(b).Scale(l))
		total += l
	}
	if total == 0 {
		return Centroid(polygon)
	}
	return sum.Scale(1 / total), nil
}

// PolygonNormal returns the sum of the cross products of consecutive fan
// vectors from the polygon centroid. With unitize the result is normalised;
// otherwise it is the area vector (half the sum).
func PolygonNormal(polygon []Vec3, unitize bool) (Vec3, error) {
	o, err := Centroid(polygon)
	if err != nil {
		return Vec3{}, err
	}
	var n Vec3
	k := len(polygon)
	for i := range polygon {
		a := polygon[i].Sub(o)
		b := polygon[(i+1)%k].Sub(o)
		n = n.Add(a.Cross(b))
	}
	if !unitize {
		return n.Scale(0.5), nil
	}
	return n.Unit()
}

// PolygonArea returns half the sum of the triangle-fan cross product
// magnitudes from the polygon centroid. Each fan triangle is signed by its
// agreement with the polygon normal, so reflex corners subtract.
func PolygonArea(polygon []Vec3) float64 {
	o, err := Centroid(polygon)
	if err != nil {
		return 0
	}
	k := len(polygon)
	crosses := make([]Vec3, k)
	var n Vec3
	for i := range polygon {
		c := polygon[i].Sub(o).Cross(polygon[(i+1)%k].Sub(o))
		crosses[i] = c
		n = n.Add(c)
	}
	var area float64
	for _, c := range crosses {
		l := c.Length()
		if c.Dot(n) < 0 {
			l = -l
		}
		area += l
	}
	return 0.5 * math.Abs(area)
}

// Orient2D returns twice the signed area of the XY triangle abc: positive
// when a, b, c turn counter-clockwise.
func Orient2D(a, b, c Vec3) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// CCW reports whether a, b, c turn counter-clockwise in the XY plane. With
// colinearOK, points within eps of the line ab count as counter-clockwise.
func CCW(a, b, c Vec3, colinearOK bool, eps float64) bool {
	o := Orient2D(a, b, c)
	if colinearOK {
		return o >= -eps
	}
	return o > eps
}

// IsPointInPolygon2D reports whether p lies inside the convex XY polygon.
// Points on an edge count as inside. The polygon may wind either way.
func IsPointInPolygon2D(p Vec3, polygon []Vec3, eps float64) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	ccw, cw := true, true
	for i := range polygon {
		a, b := polygon[i], polygon[(i+1)%n]
		if !CCW(a, b, p, true, eps) {
			ccw = false
		}
		if !CCW(b, a, p, true, eps) {
			cw = false
		}
		if !ccw && !cw {
			return false
		}
	}
	return true
}

// IsPointInTriangle2D reports whether p lies inside or on the XY triangle abc.
func IsPointInTriangle2D(p, a, b, c Vec3, eps float64) bool {
	return IsPointInPolygon2D(p, []Vec3{a, b, c}, eps)
}

// SegmentsCross2D reports whether the open XY segments ab and cd properly
// intersect: their interiors cross at a single point.
func SegmentsCross2D(a, b, c, d Vec3, eps float64) bool {
	d1 := Orient2D(a, b, c)
	d2 := Orient2D(a, b, d)
	d3 := Orient2D(c, d, a)
	d4 := Orient2D(c, d, b)
	return ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps))
}
