package mesh

import (
	"fmt"
	"slices"
)

// ValidationError describes one broken half-edge invariant.
type ValidationError struct {
	Code     string
	Vertices []Key
	Faces    []FaceKey
	Message  string
}

func (e ValidationError) Error() string {
	context := ""
	if len(e.Vertices) > 0 {
		context = fmt.Sprintf(" (vertices: %v)", e.Vertices)
	}
	if len(e.Faces) > 0 {
		context += fmt.Sprintf(" (faces: %v)", e.Faces)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, context)
}

// Validate checks the structural invariants of the mesh and returns every
// violation found. An empty result means the mesh is valid. Validate never
// mutates the mesh.
func (m *Mesh) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, m.validateStorage()...)
	errs = append(errs, m.validateReciprocity()...)
	errs = append(errs, m.validateCycles()...)
	errs = append(errs, m.validateHalfedgeFaces()...)
	errs = append(errs, m.validateCounters()...)
	return errs
}

// IsValid reports whether Validate finds nothing.
func (m *Mesh) IsValid() bool {
	return len(m.Validate()) == 0
}

// validateStorage checks that vertex records and half-edge tables agree.
func (m *Mesh) validateStorage() []ValidationError {
	var errs []ValidationError
	for _, k := range m.Vertices() {
		if _, ok := m.halfedge[k]; !ok {
			errs = append(errs, ValidationError{Vertices: []Key{k}, Code: "MISSING_HALFEDGE_TABLE", Message: "vertex has no half-edge table"})
		}
	}
	for k, h := range m.halfedge {
		if _, ok := m.vertex[k]; !ok {
			errs = append(errs, ValidationError{Vertices: []Key{k}, Code: "ORPHAN_HALFEDGE_TABLE", Message: "half-edge table without vertex"})
			continue
		}
		if len(h.order) != len(h.face) {
			errs = append(errs, ValidationError{Vertices: []Key{k}, Code: "NEIGHBOUR_ORDER", Message: "neighbour order out of sync"})
		}
		for _, v := range h.order {
			if _, ok := m.vertex[v]; !ok {
				errs = append(errs, ValidationError{Vertices: []Key{k, v}, Code: "UNKNOWN_VERTEX", Message: "half-edge to unknown vertex"})
			}
			if v == k {
				errs = append(errs, ValidationError{Vertices: []Key{k}, Code: "SELF_LOOP", Message: "half-edge loops on its vertex"})
			}
		}
	}
	return errs
}

// validateReciprocity checks that (u, v) exists iff (v, u) does, and that no
// edge is boundary on both sides.
func (m *Mesh) validateReciprocity() []ValidationError {
	var errs []ValidationError
	for _, u := range m.Vertices() {
		h, ok := m.halfedge[u]
		if !ok {
			continue
		}
		for _, v := range h.order {
			hv, ok := m.halfedge[v]
			if !ok {
				continue
			}
			back, ok := hv.get(u)
			if !ok {
				errs = append(errs, ValidationError{Vertices: []Key{u, v}, Code: "RECIPROCITY", Message: "half-edge has no reciprocal"})
				continue
			}
			if u < v && back == Outside && h.face[v] == Outside {
				errs = append(errs, ValidationError{Vertices: []Key{u, v}, Code: "ISOLATED_EDGE", Message: "edge is boundary on both sides"})
			}
		}
	}
	return errs
}

// validateCycles checks that every face cycle is well formed and that each
// of its half-edges points back at the face.
func (m *Mesh) validateCycles() []ValidationError {
	var errs []ValidationError
	for _, f := range m.Faces() {
		c := m.face[f].cycle
		if len(c) < 3 {
			errs = append(errs, ValidationError{Faces: []FaceKey{f}, Code: "DEGENERATE_FACE", Message: "face has fewer than three vertices"})
			continue
		}
		for i, u := range c {
			v := c[(i+1)%len(c)]
			h, ok := m.halfedge[u]
			if !ok {
				errs = append(errs, ValidationError{Faces: []FaceKey{f}, Vertices: []Key{u}, Code: "UNKNOWN_VERTEX", Message: "face vertex unknown"})
				continue
			}
			if g, ok := h.get(v); !ok || g != f {
				errs = append(errs, ValidationError{Faces: []FaceKey{f}, Vertices: []Key{u, v},
					Code: "CYCLE_CONSISTENCY", Message: "face half-edge does not point to the face"})
			}
		}
	}
	return errs
}

// validateHalfedgeFaces checks that every non-boundary half-edge (u, v)
// names a face in which v follows u.
func (m *Mesh) validateHalfedgeFaces() []ValidationError {
	var errs []ValidationError
	for _, u := range m.Vertices() {
		h, ok := m.halfedge[u]
		if !ok {
			continue
		}
		for _, v := range h.order {
			f := h.face[v]
			if f == Outside {
				continue
			}
			r, ok := m.face[f]
			if !ok {
				errs = append(errs, ValidationError{Faces: []FaceKey{f}, Vertices: []Key{u, v}, Code: "UNKNOWN_FACE", Message: "half-edge points to unknown face"})
				continue
			}
			i := slices.Index(r.cycle, u)
			if i < 0 || r.cycle[(i+1)%len(r.cycle)] != v {
				errs = append(errs, ValidationError{Faces: []FaceKey{f}, Vertices: []Key{u, v},
					Code: "SUCCESSOR", Message: "half-edge is not a successor pair of its face"})
			}
		}
	}
	return errs
}

func (m *Mesh) validateCounters() []ValidationError {
	var errs []ValidationError
	for k := range m.vertex {
		if k > m.maxKey {
			errs = append(errs, ValidationError{Vertices: []Key{k}, Code: "KEY_COUNTER", Message: "vertex handle above counter"})
		}
	}
	for f := range m.face {
		if f > m.maxFKey {
			errs = append(errs, ValidationError{Faces: []FaceKey{f}, Code: "FKEY_COUNTER", Message: "face handle above counter"})
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Global predicates
// ---------------------------------------------------------------------------

// IsConnected reports whether a breadth-first walk over edges from any
// vertex reaches every vertex.
func (m *Mesh) IsConnected() bool {
	keys := m.Vertices()
	if len(keys) == 0 {
		return true
	}
	seen := map[Key]bool{keys[0]: true}
	queue := []Key{keys[0]}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range m.halfedge[u].order {
			if !seen[v] {
				seen[v] = true
				queue = append(queue, v)
			}
		}
	}
	return len(seen) == len(keys)
}

// IsManifold reports whether the faces around every vertex form a single
// fan: closed for interior vertices, open and bounded by two boundary
// half-edges for boundary vertices.
func (m *Mesh) IsManifold() bool {
	return len(m.NonManifoldVertices()) == 0
}

// NonManifoldVertices returns the vertices whose faces do not form a single
// fan.
func (m *Mesh) NonManifoldVertices() []Key {
	var out []Key
	for _, k := range m.Vertices() {
		h := m.halfedge[k]
		if h.len() == 0 {
			continue
		}
		out1, in1 := 0, 0
		for _, nbr := range h.order {
			if h.face[nbr] == Outside {
				out1++
			}
			if f, ok := m.Halfedge(nbr, k); ok && f == Outside {
				in1++
			}
		}
		if out1 > 1 || in1 > 1 || out1 != in1 {
			out = append(out, k)
			continue
		}
		ordered, _ := m.VertexNeighbours(k, true)
		if len(ordered) != h.len() {
			out = append(out, k)
		}
	}
	return out
}

// IsTri reports whether every face is a triangle.
func (m *Mesh) IsTri() bool {
	return m.allFacesOfDegree(3)
}

// IsQuad reports whether every face is a quad.
func (m *Mesh) IsQuad() bool {
	return m.allFacesOfDegree(4)
}

func (m *Mesh) allFacesOfDegree(n int) bool {
	if len(m.face) == 0 {
		return false
	}
	for _, r := range m.face {
		if len(r.cycle) != n {
			return false
		}
	}
	return true
}

// IsRegular reports whether all vertices share one degree and all faces one
// size.
func (m *Mesh) IsRegular() bool {
	if len(m.vertex) == 0 || len(m.face) == 0 {
		return false
	}
	deg := -1
	for _, h := range m.halfedge {
		if deg < 0 {
			deg = h.len()
		} else if h.len() != deg {
			return false
		}
	}
	size := -1
	for _, r := range m.face {
		if size < 0 {
			size = len(r.cycle)
		} else if len(r.cycle) != size {
			return false
		}
	}
	return true
}
