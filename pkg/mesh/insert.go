package mesh

import (
	"github.com/chazu/facet/pkg/geom"
)

// InsertVertex replaces f by a fan of triangles around a new vertex w, one
// per edge of f, in cycle order. w goes at p, or at the centroid of f when p
// is nil. The new faces get fresh handles.
func (m *Mesh) InsertVertex(f FaceKey, p *geom.Vec3) ([]FaceKey, Key, error) {
	const op = "insert vertex"
	r, ok := m.face[f]
	if !ok {
		return nil, 0, errUnknownFace(op, f)
	}
	var pos geom.Vec3
	if p != nil {
		pos = *p
	} else {
		c, err := geom.Centroid(m.cyclePoints(r.cycle))
		if err != nil {
			return nil, 0, &Error{Kind: Degenerate, Op: op, Faces: []FaceKey{f}, Err: err}
		}
		pos = c
	}
	w := m.AddVertex(pos, nil)
	keys, err := m.FanFace(f, w)
	if err != nil {
		m.RemoveVertex(w)
		return nil, 0, err
	}
	return keys, w, nil
}

// FanFace is InsertVertex for a vertex that already exists: f is replaced by
// the triangles [a, b, w] over its edges a->b. w must not have neighbours.
func (m *Mesh) FanFace(f FaceKey, w Key) ([]FaceKey, error) {
	const op = "fan face"
	r, ok := m.face[f]
	if !ok {
		return nil, errUnknownFace(op, f)
	}
	if !m.HasVertex(w) {
		return nil, errUnknownVertex(op, w)
	}
	if !m.IsVertexOrphan(w) {
		return nil, &Error{Kind: NotManifold, Op: op, Vertices: []Key{w}, Faces: []FaceKey{f},
			Detail: "vertex already has neighbours"}
	}
	n := len(r.cycle)
	add := make([]faceSpec, n)
	for i, a := range r.cycle {
		add[i] = faceSpec{key: Outside, cycle: []Key{a, r.cycle[(i+1)%n], w}, attrs: r.attrs}
	}
	return m.replaceFaces(op, []FaceKey{f}, add)
}
