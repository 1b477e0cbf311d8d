package mesh

import (
	"github.com/chazu/facet/pkg/geom"
)

// VertexPosition returns the coordinates of k.
func (m *Mesh) VertexPosition(k Key) (geom.Vec3, error) {
	r, ok := m.vertex[k]
	if !ok {
		return geom.Vec3{}, errUnknownVertex("vertex position", k)
	}
	return r.pos, nil
}

// SetVertexPosition moves k to p.
func (m *Mesh) SetVertexPosition(k Key, p geom.Vec3) error {
	r, ok := m.vertex[k]
	if !ok {
		return errUnknownVertex("set vertex position", k)
	}
	r.pos = p
	return nil
}

// Position returns the coordinates of k, or the zero vector for an unknown
// vertex. Algorithms that already hold a valid handle use it to skip the
// error plumbing.
func (m *Mesh) Position(k Key) geom.Vec3 {
	if r, ok := m.vertex[k]; ok {
		return r.pos
	}
	return geom.Vec3{}
}

// Positions returns a snapshot of every vertex position.
func (m *Mesh) Positions() map[Key]geom.Vec3 {
	out := make(map[Key]geom.Vec3, len(m.vertex))
	for k, r := range m.vertex {
		out[k] = r.pos
	}
	return out
}

func (m *Mesh) cyclePoints(cycle []Key) []geom.Vec3 {
	pts := make([]geom.Vec3, len(cycle))
	for i, k := range cycle {
		pts[i] = m.vertex[k].pos
	}
	return pts
}

// FacePoints returns the coordinates of the vertices of f in cycle order.
func (m *Mesh) FacePoints(f FaceKey) ([]geom.Vec3, error) {
	r, ok := m.face[f]
	if !ok {
		return nil, errUnknownFace("face points", f)
	}
	return m.cyclePoints(r.cycle), nil
}

// FaceCentroid returns the mean of the vertices of f.
func (m *Mesh) FaceCentroid(f FaceKey) (geom.Vec3, error) {
	pts, err := m.FacePoints(f)
	if err != nil {
		return geom.Vec3{}, err
	}
	return geom.Centroid(pts)
}

// FaceCenter returns the centre of mass of the outline of f.
func (m *Mesh) FaceCenter(f FaceKey) (geom.Vec3, error) {
	pts, err := m.FacePoints(f)
	if err != nil {
		return geom.Vec3{}, err
	}
	return geom.CenterOfMassPolygon(pts)
}

// FaceArea returns the area of f.
func (m *Mesh) FaceArea(f FaceKey) (float64, error) {
	pts, err := m.FacePoints(f)
	if err != nil {
		return 0, err
	}
	return geom.PolygonArea(pts), nil
}

// FaceNormal returns the normal of f, unit length when unitize is set and
// the area vector otherwise.
func (m *Mesh) FaceNormal(f FaceKey, unitize bool) (geom.Vec3, error) {
	pts, err := m.FacePoints(f)
	if err != nil {
		return geom.Vec3{}, err
	}
	n, err := geom.PolygonNormal(pts, unitize)
	if err != nil {
		return geom.Vec3{}, &Error{Kind: Degenerate, Op: "face normal", Faces: []FaceKey{f}, Err: err}
	}
	return n, nil
}

// VertexNormal returns the unit sum of the area vectors of the faces
// around k.
func (m *Mesh) VertexNormal(k Key) (geom.Vec3, error) {
	faces, err := m.VertexFaces(k, false)
	if err != nil {
		return geom.Vec3{}, err
	}
	var n geom.Vec3
	for _, f := range faces {
		av, _ := geom.PolygonNormal(m.cyclePoints(m.face[f].cycle), false)
		n = n.Add(av)
	}
	u, err := n.Unit()
	if err != nil {
		return geom.Vec3{}, &Error{Kind: Degenerate, Op: "vertex normal", Vertices: []Key{k}, Err: err}
	}
	return u, nil
}

// VertexArea returns a third of the area of the faces around k.
func (m *Mesh) VertexArea(k Key) (float64, error) {
	faces, err := m.VertexFaces(k, false)
	if err != nil {
		return 0, err
	}
	var area float64
	for _, f := range faces {
		area += geom.PolygonArea(m.cyclePoints(m.face[f].cycle))
	}
	return area / 3, nil
}

// EdgeVector returns v - u.
func (m *Mesh) EdgeVector(u, v Key) (geom.Vec3, error) {
	ru, ok := m.vertex[u]
	if !ok {
		return geom.Vec3{}, errUnknownVertex("edge vector", u)
	}
	rv, ok := m.vertex[v]
	if !ok {
		return geom.Vec3{}, errUnknownVertex("edge vector", v)
	}
	return rv.pos.Sub(ru.pos), nil
}

// EdgeLength returns |v - u|.
func (m *Mesh) EdgeLength(u, v Key) (float64, error) {
	d, err := m.EdgeVector(u, v)
	if err != nil {
		return 0, err
	}
	return d.Length(), nil
}

// EdgeMidpoint returns the midpoint of u-v.
func (m *Mesh) EdgeMidpoint(u, v Key) (geom.Vec3, error) {
	return m.PointOnEdge(u, v, 0.5)
}

// PointOnEdge returns u + t*(v - u).
func (m *Mesh) PointOnEdge(u, v Key, t float64) (geom.Vec3, error) {
	ru, ok := m.vertex[u]
	if !ok {
		return geom.Vec3{}, errUnknownVertex("point on edge", u)
	}
	rv, ok := m.vertex[v]
	if !ok {
		return geom.Vec3{}, errUnknownVertex("point on edge", v)
	}
	return ru.pos.Lerp(rv.pos, t), nil
}
