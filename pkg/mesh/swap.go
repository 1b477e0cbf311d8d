package mesh

// SwapEdge replaces the diagonal u-v of the two triangles sharing it by the
// diagonal between their opposite vertices. Both sides must be triangles and
// the new diagonal must not exist yet; otherwise the mesh is left alone and
// IllegalSwap is returned. The triangle on the left of u->v keeps its handle
// for the new triangle that still holds v, and likewise for the other side.
func (m *Mesh) SwapEdge(u, v Key) (FaceKey, FaceKey, error) {
	const op = "swap edge"
	fuv, ok := m.Halfedge(u, v)
	if !ok {
		return 0, 0, errUnknownEdge(op, u, v)
	}
	fvu, _ := m.Halfedge(v, u)
	if fuv == Outside || fvu == Outside {
		return 0, 0, &Error{Kind: IllegalSwap, Op: op, Vertices: []Key{u, v}, Detail: "boundary edge"}
	}
	if len(m.face[fuv].cycle) != 3 || len(m.face[fvu].cycle) != 3 {
		return 0, 0, &Error{Kind: IllegalSwap, Op: op, Vertices: []Key{u, v}, Faces: []FaceKey{fuv, fvu}, Detail: "not a pair of triangles"}
	}
	a := m.faceSuccessor(fuv, v)
	b := m.faceSuccessor(fvu, u)
	if a == b || m.HasEdge(a, b) {
		return 0, 0, &Error{Kind: IllegalSwap, Op: op, Vertices: []Key{u, v, a, b}, Detail: "diagonal already exists"}
	}
	keys, err := m.replaceFaces(op, []FaceKey{fuv, fvu}, []faceSpec{
		{key: fuv, cycle: []Key{a, b, v}, attrs: m.face[fuv].attrs},
		{key: fvu, cycle: []Key{b, a, u}, attrs: m.face[fvu].attrs},
	})
	if err != nil {
		return 0, 0, err
	}
	return keys[0], keys[1], nil
}

// IsSwapLegal reports whether SwapEdge(u, v) would succeed.
func (m *Mesh) IsSwapLegal(u, v Key) bool {
	fuv, ok := m.Halfedge(u, v)
	if !ok || fuv == Outside {
		return false
	}
	fvu, _ := m.Halfedge(v, u)
	if fvu == Outside || len(m.face[fuv].cycle) != 3 || len(m.face[fvu].cycle) != 3 {
		return false
	}
	a := m.faceSuccessor(fuv, v)
	b := m.faceSuccessor(fvu, u)
	return a != b && !m.HasEdge(a, b)
}

// SwapOpposites returns the vertices opposite u-v in the two triangles that
// share it.
func (m *Mesh) SwapOpposites(u, v Key) (a, b Key, ok bool) {
	if !m.IsSwapLegal(u, v) {
		return 0, 0, false
	}
	fuv, _ := m.Halfedge(u, v)
	fvu, _ := m.Halfedge(v, u)
	return m.faceSuccessor(fuv, v), m.faceSuccessor(fvu, u), true
}
