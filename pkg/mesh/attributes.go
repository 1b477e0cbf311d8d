package mesh

// VertexAttribute returns the named attribute of k. Missing values fall back
// to DefaultVertexAttributes and then to def.
func (m *Mesh) VertexAttribute(k Key, name string, def any) any {
	r, ok := m.vertex[k]
	if !ok {
		return def
	}
	if v, ok := r.attrs[name]; ok {
		return v
	}
	if v, ok := m.DefaultVertexAttributes[name]; ok {
		return v
	}
	return def
}

// SetVertexAttribute stores an attribute on k.
func (m *Mesh) SetVertexAttribute(k Key, name string, value any) error {
	r, ok := m.vertex[k]
	if !ok {
		return errUnknownVertex("set vertex attribute", k)
	}
	if r.attrs == nil {
		r.attrs = Attributes{}
	}
	r.attrs[name] = value
	return nil
}

// VertexAttributes returns a copy of the explicit attributes of k.
func (m *Mesh) VertexAttributes(k Key) Attributes {
	if r, ok := m.vertex[k]; ok {
		return r.attrs.clone()
	}
	return nil
}

// FaceAttribute returns the named attribute of f, falling back to
// DefaultFaceAttributes and then def.
func (m *Mesh) FaceAttribute(f FaceKey, name string, def any) any {
	r, ok := m.face[f]
	if !ok {
		return def
	}
	if v, ok := r.attrs[name]; ok {
		return v
	}
	if v, ok := m.DefaultFaceAttributes[name]; ok {
		return v
	}
	return def
}

// SetFaceAttribute stores an attribute on f.
func (m *Mesh) SetFaceAttribute(f FaceKey, name string, value any) error {
	r, ok := m.face[f]
	if !ok {
		return errUnknownFace("set face attribute", f)
	}
	if r.attrs == nil {
		r.attrs = Attributes{}
	}
	r.attrs[name] = value
	return nil
}

// FaceAttributes returns a copy of the explicit attributes of f.
func (m *Mesh) FaceAttributes(f FaceKey) Attributes {
	if r, ok := m.face[f]; ok {
		return r.attrs.clone()
	}
	return nil
}

// EdgeAttribute returns the named attribute of the edge u-v in either
// orientation, falling back to DefaultEdgeAttributes and then def.
func (m *Mesh) EdgeAttribute(u, v Key, name string, def any) any {
	if !m.HasEdge(u, v) {
		return def
	}
	if a, ok := m.edgeData(u, v); ok {
		if val, ok := a[name]; ok {
			return val
		}
	}
	if val, ok := m.DefaultEdgeAttributes[name]; ok {
		return val
	}
	return def
}

// SetEdgeAttribute stores an attribute on the edge u-v. The edge keeps the
// orientation it was first stored with.
func (m *Mesh) SetEdgeAttribute(u, v Key, name string, value any) error {
	if !m.HasEdge(u, v) {
		return errUnknownEdge("set edge attribute", u, v)
	}
	a, ok := m.edgeData(u, v)
	if !ok {
		a = Attributes{}
		m.edgedata[Edge{u, v}] = a
	}
	a[name] = value
	return nil
}

func (m *Mesh) edgeData(u, v Key) (Attributes, bool) {
	if a, ok := m.edgedata[Edge{u, v}]; ok {
		return a, true
	}
	a, ok := m.edgedata[Edge{v, u}]
	return a, ok
}

func (m *Mesh) dropEdgeData(u, v Key) {
	delete(m.edgedata, Edge{u, v})
	delete(m.edgedata, Edge{v, u})
}
