package mesh

import (
	"fmt"
	"slices"
)

// CollapseEdge merges v into u. u moves to u + t*(v-u), every face around v
// is rewired to u, faces that shrink below three vertices disappear and v
// is removed. Faces keep their handles.
//
// With allowBoundary false, an edge with an endpoint on the boundary is
// refused with BoundaryForbidden. An edge whose endpoints share a neighbour
// w without a triangle (u, v, w) or (v, u, w) is refused with
// IllegalCollapse. Both refusals leave the mesh unchanged and satisfy
// IsSkipped.
func (m *Mesh) CollapseEdge(u, v Key, t float64, allowBoundary bool) error {
	const op = "collapse edge"
	if !m.HasEdge(u, v) {
		return errUnknownEdge(op, u, v)
	}
	if t < 0 || t > 1 {
		return &Error{Kind: Degenerate, Op: op, Vertices: []Key{u, v}, Detail: fmt.Sprintf("t = %g outside [0, 1]", t)}
	}
	if err := m.collapseLegality(op, u, v, allowBoundary); err != nil {
		return err
	}

	vfaces, _ := m.VertexFaces(v, false)
	slices.Sort(vfaces)
	add := make([]faceSpec, 0, len(vfaces))
	for _, f := range vfaces {
		r := m.face[f]
		c := retarget(r.cycle, v, u)
		if len(c) < 3 {
			continue
		}
		add = append(add, faceSpec{key: f, cycle: c, attrs: r.attrs})
	}

	p := m.vertex[u].pos.Lerp(m.vertex[v].pos, t)
	if _, err := m.replaceFaces(op, vfaces, add); err != nil {
		return &Error{Kind: IllegalCollapse, Op: op, Vertices: []Key{u, v}, Detail: "rewired faces conflict", Err: err}
	}
	// Edges from v that carried no face survive the rewiring; move them to u.
	for _, x := range m.halfedge[v].keys() {
		m.halfedge[v].del(x)
		m.halfedge[x].del(v)
		m.dropEdgeData(v, x)
		if x == u || m.HasEdge(u, x) {
			continue
		}
		m.halfedge[u].set(x, Outside)
		m.halfedge[x].set(u, Outside)
	}
	delete(m.halfedge, v)
	delete(m.vertex, v)
	m.vertex[u].pos = p
	Logger().Debug("collapse edge", "u", u, "v", v, "t", t)
	return nil
}

// IsCollapseLegal reports whether CollapseEdge(u, v, t, allowBoundary) passes
// its boundary and common-neighbour checks.
func (m *Mesh) IsCollapseLegal(u, v Key, allowBoundary bool) bool {
	return m.HasEdge(u, v) && m.collapseLegality("collapse edge", u, v, allowBoundary) == nil
}

func (m *Mesh) collapseLegality(op string, u, v Key, allowBoundary bool) error {
	if !allowBoundary && (m.IsVertexOnBoundary(u) || m.IsVertexOnBoundary(v)) {
		return &Error{Kind: BoundaryForbidden, Op: op, Vertices: []Key{u, v}}
	}
	fuv, _ := m.Halfedge(u, v)
	fvu, _ := m.Halfedge(v, u)
	hv := m.halfedge[v]
	for _, w := range m.halfedge[u].order {
		if w == v {
			continue
		}
		if _, ok := hv.get(w); !ok {
			continue
		}
		if m.isTriangle(fuv, u, v, w) || m.isTriangle(fvu, v, u, w) {
			continue
		}
		return &Error{Kind: IllegalCollapse, Op: op, Vertices: []Key{u, v, w},
			Detail: "common neighbour outside the faces of the edge"}
	}
	return nil
}

// isTriangle reports whether f is the triangle (a, b, c) up to rotation.
func (m *Mesh) isTriangle(f FaceKey, a, b, c Key) bool {
	if f == Outside {
		return false
	}
	cyc := m.face[f].cycle
	if len(cyc) != 3 {
		return false
	}
	i := slices.Index(cyc, a)
	return i >= 0 && cyc[(i+1)%3] == b && cyc[(i+2)%3] == c
}

// retarget replaces from by to in cycle and drops the consecutive
// duplicates that creates, including across the wrap.
func retarget(cycle []Key, from, to Key) []Key {
	out := make([]Key, 0, len(cycle))
	for _, k := range cycle {
		if k == from {
			k = to
		}
		if len(out) > 0 && out[len(out)-1] == k {
			continue
		}
		out = append(out, k)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	return out
}
