package mesh

import "slices"

// halfedges is the outgoing half-edge table of one vertex: neighbour ->
// face on the left of (vertex, neighbour). Neighbours keep insertion order,
// which is the "storage order" that ordered queries start from.
type halfedges struct {
	order []Key
	face  map[Key]FaceKey
}

func newHalfedges() *halfedges {
	return &halfedges{face: make(map[Key]FaceKey)}
}

func (h *halfedges) get(v Key) (FaceKey, bool) {
	f, ok := h.face[v]
	return f, ok
}

func (h *halfedges) set(v Key, f FaceKey) {
	if _, ok := h.face[v]; !ok {
		h.order = append(h.order, v)
	}
	h.face[v] = f
}

func (h *halfedges) del(v Key) {
	if _, ok := h.face[v]; !ok {
		return
	}
	delete(h.face, v)
	if i := slices.Index(h.order, v); i >= 0 {
		h.order = slices.Delete(h.order, i, i+1)
	}
}

func (h *halfedges) len() int {
	return len(h.order)
}

func (h *halfedges) keys() []Key {
	return slices.Clone(h.order)
}

func (h *halfedges) clone() *halfedges {
	c := &halfedges{
		order: slices.Clone(h.order),
		face:  make(map[Key]FaceKey, len(h.face)),
	}
	for k, v := range h.face {
		c.face[k] = v
	}
	return c
}
