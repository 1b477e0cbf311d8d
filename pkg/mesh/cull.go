package mesh

// CullUnusedVertices removes vertices with no neighbours and returns their
// handles.
func (m *Mesh) CullUnusedVertices() []Key {
	var culled []Key
	for _, k := range m.Vertices() {
		if m.halfedge[k].len() == 0 {
			delete(m.halfedge, k)
			delete(m.vertex, k)
			culled = append(culled, k)
		}
	}
	return culled
}

// CullUnusedEdges removes edges that have no face on either side and
// returns them.
func (m *Mesh) CullUnusedEdges() []Edge {
	var culled []Edge
	for _, e := range m.Edges() {
		fuv, _ := m.Halfedge(e.U, e.V)
		fvu, _ := m.Halfedge(e.V, e.U)
		if fuv == Outside && fvu == Outside {
			m.halfedge[e.U].del(e.V)
			m.halfedge[e.V].del(e.U)
			m.dropEdgeData(e.U, e.V)
			culled = append(culled, e)
		}
	}
	return culled
}

// UnweldVertices detaches f from its neighbours by giving it a private copy
// of each of its vertices. It returns the new vertex handles in cycle order.
// Vertices left without neighbours are not culled.
func (m *Mesh) UnweldVertices(f FaceKey) ([]Key, error) {
	const op = "unweld vertices"
	r, ok := m.face[f]
	if !ok {
		return nil, errUnknownFace(op, f)
	}
	fresh := make([]Key, len(r.cycle))
	for i, k := range r.cycle {
		v := m.vertex[k]
		fresh[i] = m.AddVertex(v.pos, v.attrs)
	}
	if _, err := m.replaceFaces(op, []FaceKey{f}, []faceSpec{{key: f, cycle: fresh, attrs: r.attrs}}); err != nil {
		for _, k := range fresh {
			m.RemoveVertex(k)
		}
		return nil, err
	}
	return fresh, nil
}
