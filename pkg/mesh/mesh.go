// Package mesh implements a half-edge polygon mesh.
//
// Topology is stored as a half-edge map: halfedge[u][v] is the face on the
// left of the directed edge u->v, or Outside for a boundary half-edge. Faces
// are ordered vertex cycles. Vertex and face handles are plain integers
// drawn from monotonic per-mesh counters.
//
// The local operators (SplitEdge, SwapEdge, CollapseEdge, ...) live in this
// package next to the storage they rewrite. Each one checks its
// preconditions before touching the mesh, so a failed call leaves the mesh
// as it was.
//
// A Mesh is not safe for concurrent use. Copy it before handing it to
// another goroutine.
package mesh

import (
	"fmt"
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/google/uuid"
)

// Key is a vertex handle.
type Key int

// FaceKey is a face handle.
type FaceKey int

// Outside is the face on the other side of a boundary half-edge.
const Outside FaceKey = -1

// Edge is an undirected edge reported in the orientation it was found.
type Edge struct {
	U, V Key
}

// Reversed returns the opposite orientation.
func (e Edge) Reversed() Edge {
	return Edge{U: e.V, V: e.U}
}

// Attributes is an arbitrary attribute bag.
type Attributes map[string]any

func (a Attributes) clone() Attributes {
	if a == nil {
		return nil
	}
	c := make(Attributes, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

type vertexRecord struct {
	pos   geom.Vec3
	attrs Attributes
}

type faceRecord struct {
	cycle []Key
	attrs Attributes
}

// Mesh is a half-edge polygon mesh.
type Mesh struct {
	// Attributes holds mesh-level attributes such as "name".
	Attributes Attributes

	// Default attribute values returned for vertices, edges and faces that
	// have no explicit value.
	DefaultVertexAttributes Attributes
	DefaultEdgeAttributes   Attributes
	DefaultFaceAttributes   Attributes

	guid uuid.UUID

	vertex   map[Key]*vertexRecord
	face     map[FaceKey]*faceRecord
	halfedge map[Key]*halfedges
	edgedata map[Edge]Attributes

	maxKey  Key
	maxFKey FaceKey
}

// New returns an empty mesh.
func New() *Mesh {
	m := &Mesh{
		Attributes:              Attributes{"name": "Mesh"},
		DefaultVertexAttributes: Attributes{},
		DefaultEdgeAttributes:   Attributes{},
		DefaultFaceAttributes:   Attributes{},
		guid:                    uuid.New(),
	}
	m.reset()
	return m
}

func (m *Mesh) reset() {
	m.vertex = make(map[Key]*vertexRecord)
	m.face = make(map[FaceKey]*faceRecord)
	m.halfedge = make(map[Key]*halfedges)
	m.edgedata = make(map[Edge]Attributes)
	m.maxKey = -1
	m.maxFKey = -1
}

// GUID identifies this mesh instance. Copies get a fresh GUID; a mesh
// loaded from data keeps the stored one.
func (m *Mesh) GUID() uuid.UUID {
	return m.guid
}

// Name returns the "name" attribute.
func (m *Mesh) Name() string {
	if s, ok := m.Attributes["name"].(string); ok {
		return s
	}
	return ""
}

// Clear removes all vertices, faces and edge data. Handle counters restart.
func (m *Mesh) Clear() {
	m.reset()
}

// Copy returns an independent deep clone.
func (m *Mesh) Copy() *Mesh {
	c := &Mesh{
		Attributes:              m.Attributes.clone(),
		DefaultVertexAttributes: m.DefaultVertexAttributes.clone(),
		DefaultEdgeAttributes:   m.DefaultEdgeAttributes.clone(),
		DefaultFaceAttributes:   m.DefaultFaceAttributes.clone(),
		guid:                    uuid.New(),
		vertex:                  make(map[Key]*vertexRecord, len(m.vertex)),
		face:                    make(map[FaceKey]*faceRecord, len(m.face)),
		halfedge:                make(map[Key]*halfedges, len(m.halfedge)),
		edgedata:                make(map[Edge]Attributes, len(m.edgedata)),
		maxKey:                  m.maxKey,
		maxFKey:                 m.maxFKey,
	}
	for k, v := range m.vertex {
		c.vertex[k] = &vertexRecord{pos: v.pos, attrs: v.attrs.clone()}
	}
	for f, r := range m.face {
		c.face[f] = &faceRecord{cycle: slices.Clone(r.cycle), attrs: r.attrs.clone()}
	}
	for k, h := range m.halfedge {
		c.halfedge[k] = h.clone()
	}
	for e, a := range m.edgedata {
		c.edgedata[e] = a.clone()
	}
	return c
}

// String returns a short summary.
func (m *Mesh) String() string {
	dmin, dmax := 0, 0
	for i, k := range m.Vertices() {
		d := m.halfedge[k].len()
		if i == 0 || d < dmin {
			dmin = d
		}
		if d > dmax {
			dmax = d
		}
	}
	return fmt.Sprintf("mesh %q: %d vertices, %d faces, %d edges, degree %d..%d",
		m.Name(), m.VertexCount(), m.FaceCount(), m.EdgeCount(), dmin, dmax)
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// AddVertex adds a vertex at p with the next free handle.
func (m *Mesh) AddVertex(p geom.Vec3, attrs Attributes) Key {
	k := m.maxKey + 1
	m.insertVertex(k, p, attrs)
	return k
}

// AddVertexWithKey adds a vertex with a caller-chosen handle. The counter is
// advanced so later automatic handles stay above k.
func (m *Mesh) AddVertexWithKey(k Key, p geom.Vec3, attrs Attributes) (Key, error) {
	if k < 0 {
		return 0, &Error{Kind: InvariantViolation, Op: "add vertex", Vertices: []Key{k}, Detail: "negative handle"}
	}
	if _, ok := m.vertex[k]; ok {
		return 0, &Error{Kind: DuplicateKey, Op: "add vertex", Vertices: []Key{k}}
	}
	m.insertVertex(k, p, attrs)
	return k, nil
}

func (m *Mesh) insertVertex(k Key, p geom.Vec3, attrs Attributes) {
	m.vertex[k] = &vertexRecord{pos: p, attrs: attrs.clone()}
	m.halfedge[k] = newHalfedges()
	if k > m.maxKey {
		m.maxKey = k
	}
}

// AddFace adds a face with the next free handle. The cycle is normalised
// first: a closing vertex equal to the first one, or repeated at the end, is
// dropped. The half-edges of the cycle must not belong to another face.
func (m *Mesh) AddFace(cycle []Key, attrs Attributes) (FaceKey, error) {
	f := m.maxFKey + 1
	if err := m.addFace(f, cycle, attrs); err != nil {
		return 0, err
	}
	return f, nil
}

// AddFaceWithKey adds a face with a caller-chosen handle.
func (m *Mesh) AddFaceWithKey(f FaceKey, cycle []Key, attrs Attributes) (FaceKey, error) {
	if f < 0 {
		return 0, &Error{Kind: InvariantViolation, Op: "add face", Faces: []FaceKey{f}, Detail: "negative handle"}
	}
	if _, ok := m.face[f]; ok {
		return 0, &Error{Kind: DuplicateKey, Op: "add face", Faces: []FaceKey{f}}
	}
	if err := m.addFace(f, cycle, attrs); err != nil {
		return 0, err
	}
	return f, nil
}

func (m *Mesh) addFace(f FaceKey, cycle []Key, attrs Attributes) error {
	cycle = normalizeCycle(cycle)
	if err := m.checkCycle("add face", cycle, nil); err != nil {
		return err
	}
	m.linkFace(f, cycle, attrs)
	return nil
}

// normalizeCycle strips trailing duplicates: a last vertex equal to the first,
// then a last vertex equal to its predecessor.
func normalizeCycle(cycle []Key) []Key {
	c := slices.Clone(cycle)
	if len(c) > 1 && c[len(c)-1] == c[0] {
		c = c[:len(c)-1]
	}
	if len(c) > 1 && c[len(c)-1] == c[len(c)-2] {
		c = c[:len(c)-1]
	}
	return c
}

// checkCycle verifies that cycle can be linked as a face: at least three
// distinct known vertices, and no half-edge already claimed by a face other
// than those in replacing.
func (m *Mesh) checkCycle(op string, cycle []Key, replacing map[FaceKey]bool) error {
	if len(cycle) < 3 {
		return &Error{Kind: DegenerateFace, Op: op, Vertices: cycle, Detail: "fewer than three vertices"}
	}
	seen := make(map[Key]bool, len(cycle))
	for _, k := range cycle {
		if _, ok := m.vertex[k]; !ok {
			return errUnknownVertex(op, k)
		}
		if seen[k] {
			return &Error{Kind: DegenerateFace, Op: op, Vertices: cycle, Detail: fmt.Sprintf("vertex %d repeats", k)}
		}
		seen[k] = true
	}
	n := len(cycle)
	for i, u := range cycle {
		v := cycle[(i+1)%n]
		if g, ok := m.halfedge[u].get(v); ok && g != Outside && !replacing[g] {
			return &Error{Kind: NotManifold, Op: op, Vertices: []Key{u, v}, Faces: []FaceKey{g},
				Detail: "half-edge already belongs to a face"}
		}
	}
	return nil
}

// linkFace stores the face and wires its half-edges. Reciprocal half-edges
// that do not exist yet are seeded as boundary.
func (m *Mesh) linkFace(f FaceKey, cycle []Key, attrs Attributes) {
	m.face[f] = &faceRecord{cycle: slices.Clone(cycle), attrs: attrs.clone()}
	if f > m.maxFKey {
		m.maxFKey = f
	}
	n := len(cycle)
	for i, u := range cycle {
		v := cycle[(i+1)%n]
		m.halfedge[u].set(v, f)
		if _, ok := m.halfedge[v].get(u); !ok {
			m.halfedge[v].set(u, Outside)
		}
	}
}

// unlinkFace turns the face's half-edges into boundary half-edges, culls
// edges that end up boundary on both sides, and drops the face record.
func (m *Mesh) unlinkFace(f FaceKey) {
	r := m.face[f]
	n := len(r.cycle)
	for i, u := range r.cycle {
		v := r.cycle[(i+1)%n]
		m.halfedge[u].set(v, Outside)
	}
	for i, u := range r.cycle {
		v := r.cycle[(i+1)%n]
		if g, ok := m.halfedge[v].get(u); ok && g == Outside {
			m.halfedge[u].del(v)
			m.halfedge[v].del(u)
			m.dropEdgeData(u, v)
		}
	}
	delete(m.face, f)
}

// DeleteFace removes a face. Its half-edges become boundary; edges left
// with no face on either side are removed.
func (m *Mesh) DeleteFace(f FaceKey) error {
	if _, ok := m.face[f]; !ok {
		return errUnknownFace("delete face", f)
	}
	m.unlinkFace(f)
	return nil
}

// RemoveVertex removes a vertex, every face around it and every half-edge to
// and from it.
func (m *Mesh) RemoveVertex(k Key) error {
	h, ok := m.halfedge[k]
	if !ok {
		return errUnknownVertex("remove vertex", k)
	}
	for _, nbr := range h.keys() {
		if f, ok := m.halfedge[k].get(nbr); ok && f != Outside {
			m.unlinkFace(f)
		}
		if f, ok := m.halfedge[nbr].get(k); ok && f != Outside {
			m.unlinkFace(f)
		}
	}
	for _, nbr := range m.halfedge[k].keys() {
		m.halfedge[nbr].del(k)
		m.dropEdgeData(k, nbr)
	}
	delete(m.halfedge, k)
	delete(m.vertex, k)
	return nil
}

// replaceFaces removes the faces in remove and links the new cycles in
// add, as one transaction: every new cycle is checked against the half-edge
// map as it will be once remove is gone, and nothing changes on failure.
// A new cycle with a non-negative key reuses that handle (which must be in
// remove or unused); Outside asks for a fresh handle.
func (m *Mesh) replaceFaces(op string, remove []FaceKey, add []faceSpec) ([]FaceKey, error) {
	replacing := make(map[FaceKey]bool, len(remove))
	for _, f := range remove {
		if _, ok := m.face[f]; !ok {
			return nil, errUnknownFace(op, f)
		}
		replacing[f] = true
	}
	claimed := make(map[Edge]bool)
	for i := range add {
		add[i].cycle = normalizeCycle(add[i].cycle)
		if err := m.checkCycle(op, add[i].cycle, replacing); err != nil {
			return nil, err
		}
		if k := add[i].key; k != Outside {
			if _, used := m.face[k]; used && !replacing[k] {
				return nil, &Error{Kind: DuplicateKey, Op: op, Faces: []FaceKey{k}}
			}
		}
		c := add[i].cycle
		for j, u := range c {
			e := Edge{u, c[(j+1)%len(c)]}
			if claimed[e] {
				return nil, &Error{Kind: NotManifold, Op: op, Vertices: []Key{e.U, e.V},
					Detail: "two new faces claim the same half-edge"}
			}
			claimed[e] = true
		}
	}
	for _, f := range remove {
		m.unlinkFace(f)
	}
	keys := make([]FaceKey, len(add))
	for i, s := range add {
		f := s.key
		if f == Outside {
			f = m.maxFKey + 1
		}
		m.linkFace(f, s.cycle, s.attrs)
		keys[i] = f
	}
	return keys, nil
}

type faceSpec struct {
	key   FaceKey
	cycle []Key
	attrs Attributes
}

// ---------------------------------------------------------------------------
// Counts and iteration
// ---------------------------------------------------------------------------

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.vertex) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.face) }

// EdgeCount returns the number of undirected edges.
func (m *Mesh) EdgeCount() int {
	n := 0
	for _, h := range m.halfedge {
		n += h.len()
	}
	return n / 2
}

// Vertices returns all vertex handles in ascending order.
func (m *Mesh) Vertices() []Key {
	keys := make([]Key, 0, len(m.vertex))
	for k := range m.vertex {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Faces returns all face handles in ascending order.
func (m *Mesh) Faces() []FaceKey {
	keys := make([]FaceKey, 0, len(m.face))
	for f := range m.face {
		keys = append(keys, f)
	}
	slices.Sort(keys)
	return keys
}

// Edges returns every undirected edge once, in the orientation first met
// when walking vertices in ascending order and neighbours in storage order.
func (m *Mesh) Edges() []Edge {
	edges := make([]Edge, 0, m.EdgeCount())
	seen := make(map[Edge]bool)
	for _, u := range m.Vertices() {
		for _, v := range m.halfedge[u].order {
			if seen[Edge{u, v}] || seen[Edge{v, u}] {
				continue
			}
			seen[Edge{u, v}] = true
			edges = append(edges, Edge{u, v})
		}
	}
	return edges
}

// VerticesEnum returns the vertex handles paired with dense indices, in the
// order used by ToVerticesAndFaces.
func (m *Mesh) VerticesEnum() []IndexedKey {
	keys := m.Vertices()
	out := make([]IndexedKey, len(keys))
	for i, k := range keys {
		out[i] = IndexedKey{Index: i, Key: k}
	}
	return out
}

// IndexedKey pairs a dense index with a vertex handle.
type IndexedKey struct {
	Index int
	Key   Key
}

// KeyIndex maps vertex handles to dense indices.
func (m *Mesh) KeyIndex() map[Key]int {
	idx := make(map[Key]int, len(m.vertex))
	for i, k := range m.Vertices() {
		idx[k] = i
	}
	return idx
}

// IndexKey maps dense indices to vertex handles.
func (m *Mesh) IndexKey() []Key {
	return m.Vertices()
}

// HasVertex reports whether k is a vertex.
func (m *Mesh) HasVertex(k Key) bool {
	_, ok := m.vertex[k]
	return ok
}

// HasFace reports whether f is a face.
func (m *Mesh) HasFace(f FaceKey) bool {
	_, ok := m.face[f]
	return ok
}

// HasEdge reports whether u and v are joined by an edge.
func (m *Mesh) HasEdge(u, v Key) bool {
	h, ok := m.halfedge[u]
	if !ok {
		return false
	}
	_, ok = h.get(v)
	return ok
}

// Halfedge returns the face on the left of u->v. ok is false when there is
// no such half-edge.
func (m *Mesh) Halfedge(u, v Key) (f FaceKey, ok bool) {
	h, found := m.halfedge[u]
	if !found {
		return Outside, false
	}
	return h.get(v)
}
