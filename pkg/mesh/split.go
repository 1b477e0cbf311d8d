package mesh

import (
	"fmt"
	"slices"
)

// ---------------------------------------------------------------------------
// Edge splits
// ---------------------------------------------------------------------------

// SplitEdge inserts a vertex w at u + t*(v-u) and threads it into both faces
// of the edge, so each face gains a vertex and keeps its handle. The edge
// u-v is replaced by u-w and w-v. With allowBoundary false an edge with a
// boundary side is refused with BoundaryForbidden.
func (m *Mesh) SplitEdge(u, v Key, t float64, allowBoundary bool) (Key, error) {
	const op = "split edge"
	fuv, fvu, err := m.splitPreconditions(op, u, v, t, allowBoundary)
	if err != nil {
		return 0, err
	}
	p := m.vertex[u].pos.Lerp(m.vertex[v].pos, t)
	w := m.AddVertex(p, nil)

	var remove []FaceKey
	var add []faceSpec
	if fuv != Outside {
		r := m.face[fuv]
		remove = append(remove, fuv)
		add = append(add, faceSpec{key: fuv, cycle: insertAfter(r.cycle, u, w), attrs: r.attrs})
	}
	if fvu != Outside {
		r := m.face[fvu]
		remove = append(remove, fvu)
		add = append(add, faceSpec{key: fvu, cycle: insertAfter(r.cycle, v, w), attrs: r.attrs})
	}
	return w, m.finishSplit(op, u, v, w, remove, add)
}

// SplitEdgeTri splits the edge u-v at u + t*(v-u) and divides each incident
// triangle in two, keeping the mesh triangular. The half of each triangle
// that touches u keeps the old handle. Faces other than triangles are
// refused with NotTriangle.
func (m *Mesh) SplitEdgeTri(u, v Key, t float64, allowBoundary bool) (Key, error) {
	const op = "split edge tri"
	fuv, fvu, err := m.splitPreconditions(op, u, v, t, allowBoundary)
	if err != nil {
		return 0, err
	}
	for _, f := range []FaceKey{fuv, fvu} {
		if f != Outside && len(m.face[f].cycle) != 3 {
			return 0, &Error{Kind: NotTriangle, Op: op, Vertices: []Key{u, v}, Faces: []FaceKey{f}}
		}
	}
	p := m.vertex[u].pos.Lerp(m.vertex[v].pos, t)
	w := m.AddVertex(p, nil)

	var remove []FaceKey
	var add []faceSpec
	if fuv != Outside {
		r := m.face[fuv]
		x := m.faceSuccessor(fuv, v)
		remove = append(remove, fuv)
		add = append(add,
			faceSpec{key: fuv, cycle: []Key{u, w, x}, attrs: r.attrs},
			faceSpec{key: Outside, cycle: []Key{w, v, x}, attrs: r.attrs})
	}
	if fvu != Outside {
		r := m.face[fvu]
		y := m.faceSuccessor(fvu, u)
		remove = append(remove, fvu)
		add = append(add,
			faceSpec{key: fvu, cycle: []Key{w, u, y}, attrs: r.attrs},
			faceSpec{key: Outside, cycle: []Key{v, w, y}, attrs: r.attrs})
	}
	return w, m.finishSplit(op, u, v, w, remove, add)
}

func (m *Mesh) splitPreconditions(op string, u, v Key, t float64, allowBoundary bool) (FaceKey, FaceKey, error) {
	fuv, ok := m.Halfedge(u, v)
	if !ok {
		return 0, 0, errUnknownEdge(op, u, v)
	}
	fvu, _ := m.Halfedge(v, u)
	if !(t > 0 && t < 1) {
		return 0, 0, &Error{Kind: Degenerate, Op: op, Vertices: []Key{u, v}, Detail: fmt.Sprintf("t = %g outside (0, 1)", t)}
	}
	if !allowBoundary && (fuv == Outside || fvu == Outside) {
		return 0, 0, &Error{Kind: BoundaryForbidden, Op: op, Vertices: []Key{u, v}}
	}
	return fuv, fvu, nil
}

// finishSplit swaps the faces and rewires the bare edge when neither side
// has a face. The new vertex w is removed again if the swap fails.
func (m *Mesh) finishSplit(op string, u, v, w Key, remove []FaceKey, add []faceSpec) error {
	if _, err := m.replaceFaces(op, remove, add); err != nil {
		m.RemoveVertex(w)
		return err
	}
	if m.HasEdge(u, v) {
		m.halfedge[u].del(v)
		m.halfedge[v].del(u)
		m.dropEdgeData(u, v)
		for _, e := range []Edge{{u, w}, {w, v}} {
			if _, ok := m.halfedge[e.U].get(e.V); !ok {
				m.halfedge[e.U].set(e.V, Outside)
			}
			if _, ok := m.halfedge[e.V].get(e.U); !ok {
				m.halfedge[e.V].set(e.U, Outside)
			}
		}
	}
	Logger().Debug("split edge", "op", op, "u", u, "v", v, "w", w)
	return nil
}

// insertAfter returns a copy of cycle with w placed right after a.
func insertAfter(cycle []Key, a, w Key) []Key {
	i := slices.Index(cycle, a)
	return slices.Insert(slices.Clone(cycle), i+1, w)
}

// ---------------------------------------------------------------------------
// Face split
// ---------------------------------------------------------------------------

// SplitFace cuts f along a new edge u-v into two faces with fresh handles.
// u and v must be non-adjacent vertices of f. The first returned face runs
// from u to v, the second from v back to u.
func (m *Mesh) SplitFace(f FaceKey, u, v Key) (FaceKey, FaceKey, error) {
	const op = "split face"
	r, ok := m.face[f]
	if !ok {
		return 0, 0, errUnknownFace(op, f)
	}
	c := r.cycle
	n := len(c)
	i, j := slices.Index(c, u), slices.Index(c, v)
	if i < 0 || j < 0 {
		return 0, 0, &Error{Kind: UnknownKey, Op: op, Vertices: []Key{u, v}, Faces: []FaceKey{f}, Detail: "vertex not in face"}
	}
	if u == v || c[(i+1)%n] == v || c[(j+1)%n] == u {
		return 0, 0, &Error{Kind: AdjacentSplit, Op: op, Vertices: []Key{u, v}, Faces: []FaceKey{f}}
	}
	rotated := append(slices.Clone(c[i:]), c[:i]...)
	k := slices.Index(rotated, v)
	f1 := slices.Clone(rotated[:k+1])
	f2 := append(slices.Clone(rotated[k:]), u)

	keys, err := m.replaceFaces(op, []FaceKey{f}, []faceSpec{
		{key: Outside, cycle: f1, attrs: r.attrs},
		{key: Outside, cycle: f2, attrs: r.attrs},
	})
	if err != nil {
		return 0, 0, err
	}
	return keys[0], keys[1], nil
}
