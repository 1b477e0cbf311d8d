package mesh

import (
	"slices"

	"github.com/samber/lo"
)

// maxFanWalk bounds the walks around a vertex or along a boundary so a
// corrupt mesh cannot loop forever.
const maxFanWalk = 1 << 16

// ---------------------------------------------------------------------------
// Vertex topology
// ---------------------------------------------------------------------------

// VertexNeighbours returns the neighbours of k. Unordered, they come in
// storage order. Ordered, they follow the incident faces around k, starting
// from a neighbour across a boundary half-edge when there is one.
func (m *Mesh) VertexNeighbours(k Key, ordered bool) ([]Key, error) {
	h, ok := m.halfedge[k]
	if !ok {
		return nil, errUnknownVertex("vertex neighbours", k)
	}
	nbrs := h.keys()
	if !ordered || len(nbrs) < 2 {
		return nbrs, nil
	}
	start := nbrs[0]
	for _, nbr := range nbrs {
		if f, _ := h.get(nbr); f == Outside {
			start = nbr
			break
		}
	}
	out := []Key{start}
	f, _ := m.halfedge[start].get(k)
	for i := 0; i < maxFanWalk && f != Outside; i++ {
		nbr := m.faceSuccessor(f, k)
		if nbr == start {
			break
		}
		out = append(out, nbr)
		f, _ = m.halfedge[nbr].get(k)
	}
	return out, nil
}

// VertexFaces returns the faces around k. Ordered, they follow the same walk
// as VertexNeighbours.
func (m *Mesh) VertexFaces(k Key, ordered bool) ([]FaceKey, error) {
	nbrs, err := m.VertexNeighbours(k, ordered)
	if err != nil {
		return nil, err
	}
	h := m.halfedge[k]
	faces := make([]FaceKey, 0, len(nbrs))
	for _, nbr := range nbrs {
		if f, _ := h.get(nbr); f != Outside {
			faces = append(faces, f)
		}
	}
	return faces, nil
}

// VertexDegree returns the number of neighbours of k, or -1 for an unknown
// vertex.
func (m *Mesh) VertexDegree(k Key) int {
	h, ok := m.halfedge[k]
	if !ok {
		return -1
	}
	return h.len()
}

// IsVertexOnBoundary reports whether k has a boundary half-edge leaving it.
func (m *Mesh) IsVertexOnBoundary(k Key) bool {
	h, ok := m.halfedge[k]
	if !ok {
		return false
	}
	for _, nbr := range h.order {
		if h.face[nbr] == Outside {
			return true
		}
	}
	return false
}

// IsVertexLeaf reports whether k has exactly one neighbour.
func (m *Mesh) IsVertexLeaf(k Key) bool {
	return m.VertexDegree(k) == 1
}

// IsVertexOrphan reports whether k has no neighbours.
func (m *Mesh) IsVertexOrphan(k Key) bool {
	return m.VertexDegree(k) == 0
}

// ---------------------------------------------------------------------------
// Face topology
// ---------------------------------------------------------------------------

// FaceVertices returns a copy of the cycle of f.
func (m *Mesh) FaceVertices(f FaceKey) ([]Key, error) {
	r, ok := m.face[f]
	if !ok {
		return nil, errUnknownFace("face vertices", f)
	}
	return slices.Clone(r.cycle), nil
}

// FaceHalfedges returns the directed edges of f in cycle order.
func (m *Mesh) FaceHalfedges(f FaceKey) ([]Edge, error) {
	r, ok := m.face[f]
	if !ok {
		return nil, errUnknownFace("face halfedges", f)
	}
	n := len(r.cycle)
	out := make([]Edge, n)
	for i, u := range r.cycle {
		out[i] = Edge{u, r.cycle[(i+1)%n]}
	}
	return out, nil
}

// FaceNeighbours returns the faces across the edges of f, in cycle order,
// skipping boundary edges.
func (m *Mesh) FaceNeighbours(f FaceKey) ([]FaceKey, error) {
	hes, err := m.FaceHalfedges(f)
	if err != nil {
		return nil, err
	}
	var out []FaceKey
	for _, e := range hes {
		if g, _ := m.halfedge[e.V].get(e.U); g != Outside && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out, nil
}

// FaceAdjacency returns the face-to-face graph.
func (m *Mesh) FaceAdjacency() map[FaceKey][]FaceKey {
	adj := make(map[FaceKey][]FaceKey, len(m.face))
	for _, f := range m.Faces() {
		adj[f], _ = m.FaceNeighbours(f)
	}
	return adj
}

// FaceVertexNeighbours returns the vertices before and after k in f.
func (m *Mesh) FaceVertexNeighbours(f FaceKey, k Key) (prev, next Key, err error) {
	r, ok := m.face[f]
	if !ok {
		return 0, 0, errUnknownFace("face vertex neighbours", f)
	}
	i := slices.Index(r.cycle, k)
	if i < 0 {
		return 0, 0, &Error{Kind: UnknownKey, Op: "face vertex neighbours", Vertices: []Key{k}, Faces: []FaceKey{f}}
	}
	n := len(r.cycle)
	return r.cycle[(i+n-1)%n], r.cycle[(i+1)%n], nil
}

// VertexDescendant returns the vertex that follows k in f.
func (m *Mesh) VertexDescendant(f FaceKey, k Key) (Key, error) {
	_, next, err := m.FaceVertexNeighbours(f, k)
	return next, err
}

// VertexAncestor returns the vertex that precedes k in f.
func (m *Mesh) VertexAncestor(f FaceKey, k Key) (Key, error) {
	prev, _, err := m.FaceVertexNeighbours(f, k)
	return prev, err
}

// faceSuccessor is VertexDescendant without the checks, for internal walks
// where f is known to contain k.
func (m *Mesh) faceSuccessor(f FaceKey, k Key) Key {
	c := m.face[f].cycle
	i := slices.Index(c, k)
	return c[(i+1)%len(c)]
}

func (m *Mesh) facePredecessor(f FaceKey, k Key) Key {
	c := m.face[f].cycle
	i := slices.Index(c, k)
	return c[(i+len(c)-1)%len(c)]
}

// FaceDegree returns the number of vertices of f, or -1 for an unknown face.
func (m *Mesh) FaceDegree(f FaceKey) int {
	r, ok := m.face[f]
	if !ok {
		return -1
	}
	return len(r.cycle)
}

// ---------------------------------------------------------------------------
// Boundary
// ---------------------------------------------------------------------------

// IsEdgeOnBoundary reports whether either side of u-v is outside.
func (m *Mesh) IsEdgeOnBoundary(u, v Key) bool {
	fuv, ok1 := m.Halfedge(u, v)
	fvu, ok2 := m.Halfedge(v, u)
	return ok1 && ok2 && (fuv == Outside || fvu == Outside)
}

// VerticesOnBoundary returns the vertices touching a boundary half-edge.
// Unordered, they are in ascending order. Ordered, they form a walk along
// boundary half-edges starting at the vertex with the smallest (y, x).
// Only the boundary component of that vertex is walked.
func (m *Mesh) VerticesOnBoundary(ordered bool) []Key {
	set := make(map[Key]bool)
	for _, u := range m.Vertices() {
		h := m.halfedge[u]
		for _, v := range h.order {
			if h.face[v] == Outside {
				set[u] = true
				set[v] = true
			}
		}
	}
	keys := lo.Keys(set)
	slices.Sort(keys)
	if !ordered || len(keys) == 0 {
		return keys
	}
	start := slices.MinFunc(keys, func(a, b Key) int {
		pa, pb := m.vertex[a].pos, m.vertex[b].pos
		switch {
		case pa.Y < pb.Y:
			return -1
		case pa.Y > pb.Y:
			return 1
		case pa.X < pb.X:
			return -1
		case pa.X > pb.X:
			return 1
		}
		return int(a - b)
	})
	walk := []Key{start}
	k := start
	for i := 0; i < maxFanWalk; i++ {
		next, ok := m.boundaryStep(k)
		if !ok || next == start {
			break
		}
		walk = append(walk, next)
		k = next
	}
	return walk
}

// boundaryStep returns the head of the first boundary half-edge leaving k.
func (m *Mesh) boundaryStep(k Key) (Key, bool) {
	h := m.halfedge[k]
	for _, nbr := range h.order {
		if h.face[nbr] == Outside {
			return nbr, true
		}
	}
	return 0, false
}

// EdgesOnBoundary returns the boundary edges, oriented along the boundary
// half-edge.
func (m *Mesh) EdgesOnBoundary() []Edge {
	var out []Edge
	for _, u := range m.Vertices() {
		h := m.halfedge[u]
		for _, v := range h.order {
			if h.face[v] == Outside {
				out = append(out, Edge{u, v})
			}
		}
	}
	return out
}

// FacesOnBoundary returns the faces with at least one boundary edge.
func (m *Mesh) FacesOnBoundary() []FaceKey {
	var out []FaceKey
	for _, e := range m.EdgesOnBoundary() {
		if f, _ := m.halfedge[e.V].get(e.U); f != Outside && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}
