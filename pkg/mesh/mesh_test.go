package mesh

import (
	"errors"
	"slices"
	"testing"

	"github.com/chazu/facet/pkg/geom"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func build(t *testing.T, vs []geom.Vec3, fs [][]int) *Mesh {
	t.Helper()
	m, err := FromVerticesAndFaces(vs, fs)
	if err != nil {
		t.Fatalf("FromVerticesAndFaces: %v", err)
	}
	return m
}

// tetra is the tetrahedron of the topology scenario. Its first face runs
// against the other three.
func tetra(t *testing.T) *Mesh {
	return build(t,
		[]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[][]int{{0, 1, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}})
}

// squarePair is the unit square cut along 0-2.
func squarePair(t *testing.T) *Mesh {
	return build(t,
		[]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[][]int{{0, 1, 2}, {0, 2, 3}})
}

func octahedron(t *testing.T) *Mesh {
	return build(t,
		[]geom.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}},
		[][]int{
			{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
			{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
		})
}

// canonical rotates a cycle so it starts at its smallest handle.
func canonical(c []Key) []Key {
	i := slices.Index(c, slices.Min(c))
	return append(slices.Clone(c[i:]), c[:i]...)
}

func faceSet(m *Mesh) [][]Key {
	var out [][]Key
	for _, f := range m.Faces() {
		c, _ := m.FaceVertices(f)
		out = append(out, canonical(c))
	}
	slices.SortFunc(out, func(a, b []Key) int { return slices.Compare(a, b) })
	return out
}

func sameFaces(a, b [][]Key) bool {
	return slices.EqualFunc(a, b, func(x, y []Key) bool { return slices.Equal(x, y) })
}

func requireValid(t *testing.T, m *Mesh) {
	t.Helper()
	for _, e := range m.Validate() {
		t.Errorf("invalid mesh: %v", e)
	}
}

// sameTopology compares vertex positions, face cycles and the half-edge
// map entry by entry.
func sameTopology(t *testing.T, a, b *Mesh) {
	t.Helper()
	if !slices.Equal(a.Vertices(), b.Vertices()) {
		t.Fatalf("vertices differ: %v vs %v", a.Vertices(), b.Vertices())
	}
	if !slices.Equal(a.Faces(), b.Faces()) {
		t.Fatalf("faces differ: %v vs %v", a.Faces(), b.Faces())
	}
	for _, k := range a.Vertices() {
		if a.Position(k) != b.Position(k) {
			t.Errorf("vertex %d: %v vs %v", k, a.Position(k), b.Position(k))
		}
		na, _ := a.VertexNeighbours(k, false)
		nb, _ := b.VertexNeighbours(k, false)
		slices.Sort(na)
		slices.Sort(nb)
		if !slices.Equal(na, nb) {
			t.Errorf("vertex %d neighbours: %v vs %v", k, na, nb)
			continue
		}
		for _, v := range na {
			fa, _ := a.Halfedge(k, v)
			fb, _ := b.Halfedge(k, v)
			if fa != fb {
				t.Errorf("halfedge %d->%d: %d vs %d", k, v, fa, fb)
			}
		}
	}
	for _, f := range a.Faces() {
		ca, _ := a.FaceVertices(f)
		cb, _ := b.FaceVertices(f)
		if !slices.Equal(canonical(ca), canonical(cb)) {
			t.Errorf("face %d: %v vs %v", f, ca, cb)
		}
	}
}

// ---------------------------------------------------------------------------
// Construction and queries
// ---------------------------------------------------------------------------

func TestTetrahedronTopology(t *testing.T) {
	m := tetra(t)
	requireValid(t, m)

	if got := m.VertexCount(); got != 4 {
		t.Errorf("VertexCount = %d, want 4", got)
	}
	if got := m.FaceCount(); got != 4 {
		t.Errorf("FaceCount = %d, want 4", got)
	}
	if got := m.EdgeCount(); got != 6 {
		t.Errorf("EdgeCount = %d, want 6", got)
	}
	for _, k := range m.Vertices() {
		if d := m.VertexDegree(k); d != 3 {
			t.Errorf("VertexDegree(%d) = %d, want 3", k, d)
		}
	}
	if !m.IsManifold() {
		t.Errorf("IsManifold = false, non-manifold at %v", m.NonManifoldVertices())
	}
	if !m.IsConnected() {
		t.Error("IsConnected = false")
	}
	if b := m.VerticesOnBoundary(false); len(b) != 0 {
		t.Errorf("VerticesOnBoundary = %v, want none", b)
	}
	if !m.IsTri() || m.IsQuad() {
		t.Errorf("IsTri = %v, IsQuad = %v", m.IsTri(), m.IsQuad())
	}
	if !m.IsRegular() {
		t.Error("IsRegular = false")
	}
	c, _ := m.FaceVertices(0)
	if !slices.Equal(c, []Key{0, 1, 2}) {
		t.Errorf("seed face reoriented: %v", c)
	}
}

func TestAddFaceErrors(t *testing.T) {
	tests := []struct {
		name  string
		cycle []Key
		want  error
	}{
		{"two vertices", []Key{0, 1}, ErrDegenerateFace},
		{"trailing duplicate", []Key{0, 1, 1}, ErrDegenerateFace},
		{"closing duplicate", []Key{0, 1, 0}, ErrDegenerateFace},
		{"repeated vertex", []Key{0, 1, 0, 2}, ErrDegenerateFace},
		{"unknown vertex", []Key{0, 1, 9}, ErrUnknownKey},
		{"claimed half-edge", []Key{0, 1, 3}, ErrNotManifold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			for i := 0; i < 4; i++ {
				m.AddVertex(geom.V(float64(i), float64(i*i), 0), nil)
			}
			if _, err := m.AddFace([]Key{0, 1, 2}, nil); err != nil {
				t.Fatalf("AddFace: %v", err)
			}
			before := m.FaceCount()
			_, err := m.AddFace(tt.cycle, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("AddFace(%v) error = %v, want %v", tt.cycle, err, tt.want)
			}
			if m.FaceCount() != before {
				t.Errorf("face count changed to %d", m.FaceCount())
			}
			requireValid(t, m)
		})
	}
}

func TestAddFaceNormalisesCycle(t *testing.T) {
	m := New()
	for i := 0; i < 3; i++ {
		m.AddVertex(geom.V(float64(i), float64(i%2), 0), nil)
	}
	f, err := m.AddFace([]Key{0, 1, 2, 0}, nil)
	if err != nil {
		t.Fatalf("AddFace: %v", err)
	}
	if c, _ := m.FaceVertices(f); !slices.Equal(c, []Key{0, 1, 2}) {
		t.Errorf("cycle = %v, want [0 1 2]", c)
	}
}

func TestHandleCounters(t *testing.T) {
	m := New()
	if k := m.AddVertex(geom.Vec3{}, nil); k != 0 {
		t.Errorf("first handle = %d, want 0", k)
	}
	if _, err := m.AddVertexWithKey(10, geom.Vec3{}, nil); err != nil {
		t.Fatalf("AddVertexWithKey: %v", err)
	}
	if k := m.AddVertex(geom.Vec3{}, nil); k != 11 {
		t.Errorf("handle after 10 = %d, want 11", k)
	}
	if _, err := m.AddVertexWithKey(10, geom.Vec3{}, nil); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate handle error = %v", err)
	}
	m.RemoveVertex(11)
	if k := m.AddVertex(geom.Vec3{}, nil); k != 12 {
		t.Errorf("handle after removal = %d, want 12", k)
	}
}

func TestRemoveVertexAndDeleteFace(t *testing.T) {
	m := squarePair(t)
	if err := m.RemoveVertex(0); err != nil {
		t.Fatalf("RemoveVertex: %v", err)
	}
	requireValid(t, m)
	if m.FaceCount() != 0 || m.EdgeCount() != 0 || m.VertexCount() != 3 {
		t.Errorf("after RemoveVertex: %s", m)
	}

	m = squarePair(t)
	if err := m.DeleteFace(0); err != nil {
		t.Fatalf("DeleteFace: %v", err)
	}
	requireValid(t, m)
	if m.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", m.EdgeCount())
	}
	if !m.IsVertexOrphan(1) {
		t.Error("vertex 1 should be orphaned")
	}
	if got := m.CullUnusedVertices(); !slices.Equal(got, []Key{1}) {
		t.Errorf("CullUnusedVertices = %v, want [1]", got)
	}
	if err := m.DeleteFace(0); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("second DeleteFace error = %v", err)
	}
}

func TestBoundaryWalk(t *testing.T) {
	m := squarePair(t)
	walk := m.VerticesOnBoundary(true)
	if len(walk) != 4 || walk[0] != 0 {
		t.Fatalf("VerticesOnBoundary(true) = %v", walk)
	}
	for i, u := range walk {
		v := walk[(i+1)%len(walk)]
		if f, ok := m.Halfedge(u, v); !ok || f != Outside {
			t.Errorf("%d->%d is not a boundary half-edge", u, v)
		}
	}
	if got := m.EdgesOnBoundary(); len(got) != 4 {
		t.Errorf("EdgesOnBoundary = %v", got)
	}
	if got := m.FacesOnBoundary(); !slices.Equal(got, []FaceKey{0, 1}) {
		t.Errorf("FacesOnBoundary = %v", got)
	}
	if m.IsEdgeOnBoundary(0, 2) || !m.IsEdgeOnBoundary(0, 1) {
		t.Error("IsEdgeOnBoundary wrong for 0-2 or 0-1")
	}
}

func TestOrderedNeighbours(t *testing.T) {
	m := octahedron(t)
	for _, k := range m.Vertices() {
		nbrs, err := m.VertexNeighbours(k, true)
		if err != nil {
			t.Fatalf("VertexNeighbours(%d): %v", k, err)
		}
		if len(nbrs) != 4 {
			t.Fatalf("vertex %d: %v", k, nbrs)
		}
		// Consecutive neighbours share a face with k.
		for i, a := range nbrs {
			b := nbrs[(i+1)%len(nbrs)]
			if !m.HasEdge(a, b) {
				t.Errorf("vertex %d: %d and %d not consecutive", k, a, b)
			}
		}
		faces, _ := m.VertexFaces(k, true)
		if len(faces) != 4 {
			t.Errorf("VertexFaces(%d) = %v", k, faces)
		}
	}
	if _, err := m.VertexNeighbours(42, false); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("unknown vertex error = %v", err)
	}
}

func TestGeometryQueries(t *testing.T) {
	m := squarePair(t)
	area, _ := m.FaceArea(0)
	if !near(area, 0.5) {
		t.Errorf("FaceArea = %g, want 0.5", area)
	}
	n, _ := m.FaceNormal(0, true)
	if !near(n.Z, 1) {
		t.Errorf("FaceNormal = %v", n)
	}
	vn, _ := m.VertexNormal(0)
	if !near(vn.Z, 1) {
		t.Errorf("VertexNormal = %v", vn)
	}
	va, _ := m.VertexArea(0)
	if !near(va, 1.0/3) {
		t.Errorf("VertexArea = %g, want 1/3", va)
	}
	l, _ := m.EdgeLength(0, 1)
	if !near(l, 1) {
		t.Errorf("EdgeLength = %g", l)
	}
	p, _ := m.PointOnEdge(0, 2, 0.25)
	if !near(p.X, 0.25) || !near(p.Y, 0.25) {
		t.Errorf("PointOnEdge = %v", p)
	}
	c, _ := m.FaceCentroid(1)
	if !near(c.X, 1.0/3) || !near(c.Y, 2.0/3) {
		t.Errorf("FaceCentroid = %v", c)
	}
}

func TestAttributes(t *testing.T) {
	m := squarePair(t)
	m.DefaultVertexAttributes["is_fixed"] = false
	m.SetVertexAttribute(0, "is_fixed", true)

	if got := m.VertexAttribute(0, "is_fixed", nil); got != true {
		t.Errorf("explicit attribute = %v", got)
	}
	if got := m.VertexAttribute(1, "is_fixed", nil); got != false {
		t.Errorf("default attribute = %v", got)
	}
	if got := m.VertexAttribute(1, "missing", 7); got != 7 {
		t.Errorf("caller default = %v", got)
	}
	if err := m.SetEdgeAttribute(0, 2, "crease", 1.5); err != nil {
		t.Fatalf("SetEdgeAttribute: %v", err)
	}
	if got := m.EdgeAttribute(2, 0, "crease", 0.0); got != 1.5 {
		t.Errorf("reversed edge attribute = %v", got)
	}
	if err := m.SetEdgeAttribute(1, 3, "crease", 1.0); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("missing edge error = %v", err)
	}
	m.SetFaceAttribute(1, "name", "upper")
	if got := m.FaceAttribute(1, "name", ""); got != "upper" {
		t.Errorf("face attribute = %v", got)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestValidateFindsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(m *Mesh)
		code    string
	}{
		{"missing reciprocal", func(m *Mesh) { m.halfedge[1].del(0) }, "RECIPROCITY"},
		{"wrong face", func(m *Mesh) { m.halfedge[0].set(1, 1) }, "CYCLE_CONSISTENCY"},
		{"isolated edge", func(m *Mesh) {
			m.halfedge[1].set(3, Outside)
			m.halfedge[3].set(1, Outside)
		}, "ISOLATED_EDGE"},
		{"counter behind", func(m *Mesh) { m.maxKey = 0 }, "KEY_COUNTER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := squarePair(t)
			tt.corrupt(m)
			errs := m.Validate()
			found := false
			for _, e := range errs {
				if e.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want code %s", errs, tt.code)
			}
			if m.IsValid() {
				t.Error("IsValid = true")
			}
		})
	}
}

func TestCopyIsIndependent(t *testing.T) {
	m := octahedron(t)
	c := m.Copy()
	if m.IsValid() != c.IsValid() {
		t.Fatal("validity changed by Copy")
	}
	if c.GUID() == m.GUID() {
		t.Error("copy shares GUID")
	}
	c.SetVertexPosition(0, geom.V(9, 9, 9))
	if _, _, err := c.SwapEdge(0, 4); err != nil {
		t.Fatalf("SwapEdge on copy: %v", err)
	}
	if m.Position(0) != geom.V(1, 0, 0) {
		t.Error("copy shares positions")
	}
	if !m.HasEdge(0, 4) {
		t.Error("copy shares topology")
	}
	requireValid(t, m)
	requireValid(t, c)
}

func TestNonManifoldVertex(t *testing.T) {
	// Two triangles touching at vertex 0 only.
	m := build(t,
		[]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {-1, 0, 0}, {-1, -1, 0}},
		[][]int{{0, 1, 2}, {0, 3, 4}})
	requireValid(t, m)
	if m.IsManifold() {
		t.Error("bow-tie reported manifold")
	}
	if got := m.NonManifoldVertices(); !slices.Equal(got, []Key{0}) {
		t.Errorf("NonManifoldVertices = %v", got)
	}
	if m.IsConnected() != true {
		t.Error("bow-tie should be connected")
	}
}

// ---------------------------------------------------------------------------
// Exchange and persistence
// ---------------------------------------------------------------------------

func TestVerticesAndFacesRoundTrip(t *testing.T) {
	m := octahedron(t)
	vs, fs := m.ToVerticesAndFaces()
	back := build(t, vs, fs)
	sameTopology(t, m, back)
}

func TestFromVerticesAndFacesErrors(t *testing.T) {
	vs := []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if _, err := FromVerticesAndFaces(vs, [][]int{{0, 1, 5}}); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("out of range error = %v", err)
	}
	if _, err := FromVerticesAndFaces(vs, [][]int{{0, 1}}); !errors.Is(err, ErrDegenerateFace) {
		t.Errorf("short face error = %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m := octahedron(t)
	m.Attributes["name"] = "octa"
	m.DefaultFaceAttributes["color"] = "red"
	m.SetVertexAttribute(3, "is_fixed", true)
	m.SetFaceAttribute(2, "tag", "top")
	m.SetEdgeAttribute(0, 4, "crease", 2.0)

	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var back Mesh
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	requireValid(t, &back)
	sameTopology(t, m, &back)

	if back.GUID() != m.GUID() {
		t.Error("GUID not preserved")
	}
	if back.Name() != "octa" {
		t.Errorf("Name = %q", back.Name())
	}
	if got := back.VertexAttribute(3, "is_fixed", false); got != true {
		t.Errorf("vertex attribute = %v", got)
	}
	if got := back.FaceAttribute(2, "tag", ""); got != "top" {
		t.Errorf("face attribute = %v", got)
	}
	if got := back.FaceAttribute(1, "color", ""); got != "red" {
		t.Errorf("default face attribute = %v", got)
	}
	if got := back.EdgeAttribute(4, 0, "crease", 0.0); got != 2.0 {
		t.Errorf("edge attribute = %v", got)
	}
	if k := back.AddVertex(geom.Vec3{}, nil); k != 6 {
		t.Errorf("next handle after load = %d, want 6", k)
	}
}

func TestFromDataRejectsMismatchedHalfedges(t *testing.T) {
	d := squarePair(t).ToData()
	wrong := FaceKey(1)
	d.Halfedge["0"]["1"] = &wrong
	if _, err := FromData(d); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("FromData error = %v, want invariant violation", err)
	}
}

// ---------------------------------------------------------------------------
// Callbacks
// ---------------------------------------------------------------------------

func TestNotifyProgress(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		p        Progress
		wantStop bool
		wantErr  error
	}{
		{"nil", nil, false, nil},
		{"continue", func(int, Report) error { return nil }, false, nil},
		{"stop", func(int, Report) error { return Stop }, true, nil},
		{"abort", func(int, Report) error { return boom }, true, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stop, err := NotifyProgress(tt.p, 0, Report{})
			if stop != tt.wantStop || !errors.Is(err, tt.wantErr) {
				t.Errorf("NotifyProgress = %v, %v", stop, err)
			}
		})
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
