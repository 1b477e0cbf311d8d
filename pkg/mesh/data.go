package mesh

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/chazu/facet/pkg/geom"
	"github.com/google/uuid"
)

// Data is the serialisable form of a mesh. Handles are written as decimal
// strings; vertex coordinates live in the vertex attribute map under "x",
// "y" and "z". A nil entry in Halfedge is a boundary half-edge.
type Data struct {
	Attributes Attributes                       `json:"attributes"`
	DVA        Attributes                       `json:"dva"`
	DEA        Attributes                       `json:"dea"`
	DFA        Attributes                       `json:"dfa"`
	Vertex     map[string]Attributes            `json:"vertex"`
	Face       map[string][]Key                 `json:"face"`
	Halfedge   map[string]map[string]*FaceKey   `json:"halfedge"`
	Edge       map[string]map[string]Attributes `json:"edge"`
	FaceData   map[string]Attributes            `json:"facedata"`
	MaxIntKey  int                              `json:"max_int_key"`
	MaxIntFKey int                              `json:"max_int_fkey"`
	GUID       string                           `json:"guid,omitempty"`
}

func keyString[K ~int](k K) string { return strconv.Itoa(int(k)) }

func parseKey[K ~int](s string) (K, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad handle %q: %w", s, err)
	}
	return K(n), nil
}

// ToData returns the serialisable form of m.
func (m *Mesh) ToData() *Data {
	d := &Data{
		Attributes: m.Attributes.clone(),
		DVA:        m.DefaultVertexAttributes.clone(),
		DEA:        m.DefaultEdgeAttributes.clone(),
		DFA:        m.DefaultFaceAttributes.clone(),
		Vertex:     make(map[string]Attributes, len(m.vertex)),
		Face:       make(map[string][]Key, len(m.face)),
		Halfedge:   make(map[string]map[string]*FaceKey, len(m.halfedge)),
		Edge:       make(map[string]map[string]Attributes),
		FaceData:   make(map[string]Attributes),
		MaxIntKey:  int(m.maxKey),
		MaxIntFKey: int(m.maxFKey),
		GUID:       m.guid.String(),
	}
	for k, r := range m.vertex {
		a := r.attrs.clone()
		if a == nil {
			a = Attributes{}
		}
		a["x"], a["y"], a["z"] = r.pos.X, r.pos.Y, r.pos.Z
		d.Vertex[keyString(k)] = a
	}
	for f, r := range m.face {
		d.Face[keyString(f)] = slices.Clone(r.cycle)
		if len(r.attrs) > 0 {
			d.FaceData[keyString(f)] = r.attrs.clone()
		}
	}
	for u, h := range m.halfedge {
		row := make(map[string]*FaceKey, h.len())
		for _, v := range h.order {
			if f := h.face[v]; f != Outside {
				row[keyString(v)] = &f
			} else {
				row[keyString(v)] = nil
			}
		}
		d.Halfedge[keyString(u)] = row
	}
	for e, a := range m.edgedata {
		row, ok := d.Edge[keyString(e.U)]
		if !ok {
			row = make(map[string]Attributes)
			d.Edge[keyString(e.U)] = row
		}
		row[keyString(e.V)] = a.clone()
	}
	return d
}

// FromData rebuilds a mesh from d. Faces are linked in ascending handle
// order and the result is checked against the stored half-edge map, so a
// document whose half-edges disagree with its faces is rejected.
func FromData(d *Data) (*Mesh, error) {
	m := New()
	if d.Attributes != nil {
		m.Attributes = d.Attributes.clone()
	}
	if d.DVA != nil {
		m.DefaultVertexAttributes = d.DVA.clone()
	}
	if d.DEA != nil {
		m.DefaultEdgeAttributes = d.DEA.clone()
	}
	if d.DFA != nil {
		m.DefaultFaceAttributes = d.DFA.clone()
	}
	if d.GUID != "" {
		g, err := uuid.Parse(d.GUID)
		if err != nil {
			return nil, &Error{Kind: InvariantViolation, Op: "from data", Detail: "bad guid", Err: err}
		}
		m.guid = g
	}

	vkeys := make([]Key, 0, len(d.Vertex))
	vattrs := make(map[Key]Attributes, len(d.Vertex))
	for s, a := range d.Vertex {
		k, err := parseKey[Key](s)
		if err != nil {
			return nil, &Error{Kind: UnknownKey, Op: "from data", Err: err}
		}
		vkeys = append(vkeys, k)
		vattrs[k] = a
	}
	slices.Sort(vkeys)
	for _, k := range vkeys {
		a := vattrs[k].clone()
		p := geom.Vec3{X: number(a["x"]), Y: number(a["y"]), Z: number(a["z"])}
		delete(a, "x")
		delete(a, "y")
		delete(a, "z")
		if len(a) == 0 {
			a = nil
		}
		if _, err := m.AddVertexWithKey(k, p, a); err != nil {
			return nil, err
		}
	}

	fkeys := make([]FaceKey, 0, len(d.Face))
	for s := range d.Face {
		f, err := parseKey[FaceKey](s)
		if err != nil {
			return nil, &Error{Kind: UnknownKey, Op: "from data", Err: err}
		}
		fkeys = append(fkeys, f)
	}
	slices.Sort(fkeys)
	for _, f := range fkeys {
		s := keyString(f)
		if _, err := m.AddFaceWithKey(f, d.Face[s], d.FaceData[s]); err != nil {
			return nil, err
		}
	}

	if err := m.matchHalfedges(d.Halfedge); err != nil {
		return nil, err
	}

	for su, row := range d.Edge {
		u, err := parseKey[Key](su)
		if err != nil {
			return nil, &Error{Kind: UnknownKey, Op: "from data", Err: err}
		}
		for sv, a := range row {
			v, err := parseKey[Key](sv)
			if err != nil {
				return nil, &Error{Kind: UnknownKey, Op: "from data", Err: err}
			}
			if !m.HasEdge(u, v) {
				continue
			}
			m.edgedata[Edge{u, v}] = a.clone()
		}
	}

	if Key(d.MaxIntKey) > m.maxKey {
		m.maxKey = Key(d.MaxIntKey)
	}
	if FaceKey(d.MaxIntFKey) > m.maxFKey {
		m.maxFKey = FaceKey(d.MaxIntFKey)
	}
	return m, nil
}

// matchHalfedges compares the half-edges produced by linking the faces with
// the stored map. Edges with no face on either side are restored as they
// were; every other stored entry must agree.
func (m *Mesh) matchHalfedges(stored map[string]map[string]*FaceKey) error {
	if stored == nil {
		return nil
	}
	us := make([]Key, 0, len(stored))
	rows := make(map[Key]map[Key]FaceKey, len(stored))
	for su, row := range stored {
		u, err := parseKey[Key](su)
		if err != nil {
			return &Error{Kind: UnknownKey, Op: "from data", Err: err}
		}
		us = append(us, u)
		r := make(map[Key]FaceKey, len(row))
		for sv, f := range row {
			v, err := parseKey[Key](sv)
			if err != nil {
				return &Error{Kind: UnknownKey, Op: "from data", Err: err}
			}
			r[v] = Outside
			if f != nil {
				r[v] = *f
			}
		}
		rows[u] = r
	}
	slices.Sort(us)
	for _, u := range us {
		if !m.HasVertex(u) {
			return errUnknownVertex("from data", u)
		}
		vs := make([]Key, 0, len(rows[u]))
		for v := range rows[u] {
			vs = append(vs, v)
		}
		slices.Sort(vs)
		for _, v := range vs {
			want := rows[u][v]
			got, ok := m.Halfedge(u, v)
			switch {
			case ok && got == want:
			case !ok && want == Outside && storedBoundary(rows, v, u) && m.HasVertex(v):
				m.halfedge[u].set(v, Outside)
				m.halfedge[v].set(u, Outside)
			default:
				return &Error{Kind: InvariantViolation, Op: "from data", Vertices: []Key{u, v},
					Detail: "stored half-edge disagrees with face cycles"}
			}
		}
	}
	for u, h := range m.halfedge {
		for _, v := range h.order {
			if _, ok := rows[u][v]; !ok {
				return &Error{Kind: InvariantViolation, Op: "from data", Vertices: []Key{u, v},
					Detail: "half-edge missing from stored map"}
			}
		}
	}
	return nil
}

func storedBoundary(rows map[Key]map[Key]FaceKey, u, v Key) bool {
	f, ok := rows[u][v]
	return ok && f == Outside
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

// MarshalJSON encodes the mesh as its Data form.
func (m *Mesh) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToData())
}

// UnmarshalJSON replaces m with the mesh decoded from b.
func (m *Mesh) UnmarshalJSON(b []byte) error {
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	loaded, err := FromData(&d)
	if err != nil {
		return err
	}
	*m = *loaded
	return nil
}
