package mesh

import (
	"errors"
	"slices"
	"testing"

	"github.com/chazu/facet/pkg/geom"
)

// holedTriangle is a ring of six triangles around a triangular hole a-b-c
// (vertices 3, 4, 5).
func holedTriangle(t *testing.T) *Mesh {
	return build(t,
		[]geom.Vec3{{0, 0, 0}, {4, 0, 0}, {2, 4, 0}, {1.5, 1, 0}, {2.5, 1, 0}, {2, 2, 0}},
		[][]int{{0, 1, 4}, {0, 4, 3}, {1, 2, 5}, {1, 5, 4}, {2, 0, 3}, {2, 3, 5}})
}

func TestSwapEdgeScenario(t *testing.T) {
	m := squarePair(t)
	if _, _, err := m.SwapEdge(0, 2); err != nil {
		t.Fatalf("SwapEdge: %v", err)
	}
	requireValid(t, m)
	want := [][]Key{{0, 1, 3}, {1, 2, 3}}
	if got := faceSet(m); !sameFaces(got, want) {
		t.Errorf("faces = %v, want %v", got, want)
	}
	if m.HasEdge(0, 2) {
		t.Error("old diagonal 0-2 still present")
	}
	if !m.HasEdge(1, 3) {
		t.Error("new diagonal 1-3 missing")
	}
}

func TestSwapEdgeIsSelfInverse(t *testing.T) {
	m := squarePair(t)
	before := faceSet(m)
	if _, _, err := m.SwapEdge(0, 2); err != nil {
		t.Fatalf("first swap: %v", err)
	}
	if _, _, err := m.SwapEdge(1, 3); err != nil {
		t.Fatalf("second swap: %v", err)
	}
	requireValid(t, m)
	if got := faceSet(m); !sameFaces(got, before) {
		t.Errorf("faces = %v, want %v", got, before)
	}
}

func TestSwapEdgeRefusals(t *testing.T) {
	tests := []struct {
		name string
		mesh func(*testing.T) *Mesh
		u, v Key
		want error
	}{
		{"boundary edge", squarePair, 0, 1, ErrIllegalSwap},
		{"missing edge", squarePair, 1, 3, ErrUnknownKey},
		{"diagonal exists", tetra, 0, 1, ErrIllegalSwap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mesh(t)
			before := faceSet(m)
			_, _, err := m.SwapEdge(tt.u, tt.v)
			if !errors.Is(err, tt.want) {
				t.Fatalf("SwapEdge error = %v, want %v", err, tt.want)
			}
			if got := faceSet(m); !sameFaces(got, before) {
				t.Error("refused swap changed the mesh")
			}
		})
	}
	_, _, err := squarePair(t).SwapEdge(0, 1)
	if !IsSkipped(err) {
		t.Errorf("IsSkipped(%v) = false", err)
	}
}

func TestSplitEdge(t *testing.T) {
	m := squarePair(t)
	w, err := m.SplitEdge(0, 2, 0.5, false)
	if err != nil {
		t.Fatalf("SplitEdge: %v", err)
	}
	requireValid(t, m)
	if m.HasEdge(0, 2) || !m.HasEdge(0, w) || !m.HasEdge(w, 2) {
		t.Error("edge not rewired through the new vertex")
	}
	if got := m.Position(w); got != geom.V(0.5, 0.5, 0) {
		t.Errorf("new vertex at %v", got)
	}
	if m.FaceDegree(0) != 4 || m.FaceDegree(1) != 4 {
		t.Errorf("face degrees %d, %d, want 4, 4", m.FaceDegree(0), m.FaceDegree(1))
	}

	if _, err := m.SplitEdge(0, 1, 0.5, false); !errors.Is(err, ErrBoundaryForbidden) {
		t.Errorf("boundary split error = %v", err)
	}
	if _, err := m.SplitEdge(0, 1, 1, true); !errors.Is(err, ErrDegenerate) {
		t.Errorf("t = 1 error = %v", err)
	}
	b, err := m.SplitEdge(0, 1, 0.25, true)
	if err != nil {
		t.Fatalf("boundary SplitEdge: %v", err)
	}
	requireValid(t, m)
	if !m.IsVertexOnBoundary(b) {
		t.Error("vertex on split boundary edge is not on the boundary")
	}
}

func TestSplitEdgeTri(t *testing.T) {
	m := squarePair(t)
	w, err := m.SplitEdgeTri(0, 2, 0.5, false)
	if err != nil {
		t.Fatalf("SplitEdgeTri: %v", err)
	}
	requireValid(t, m)
	if m.FaceCount() != 4 || !m.IsTri() {
		t.Errorf("after split: %s", m)
	}
	if d := m.VertexDegree(w); d != 4 {
		t.Errorf("VertexDegree(w) = %d, want 4", d)
	}

	b, err := m.SplitEdgeTri(0, 1, 0.5, true)
	if err != nil {
		t.Fatalf("boundary SplitEdgeTri: %v", err)
	}
	requireValid(t, m)
	if m.FaceCount() != 5 || m.VertexDegree(b) != 3 {
		t.Errorf("after boundary split: %s, degree %d", m, m.VertexDegree(b))
	}
}

func TestSplitFace(t *testing.T) {
	m := build(t, []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, [][]int{{0, 1, 2, 3}})
	if _, _, err := m.SplitFace(0, 0, 1); !errors.Is(err, ErrAdjacentSplit) {
		t.Errorf("adjacent split error = %v", err)
	}
	f1, f2, err := m.SplitFace(0, 0, 2)
	if err != nil {
		t.Fatalf("SplitFace: %v", err)
	}
	requireValid(t, m)
	c1, _ := m.FaceVertices(f1)
	c2, _ := m.FaceVertices(f2)
	if !slices.Equal(c1, []Key{0, 1, 2}) || !slices.Equal(c2, []Key{2, 3, 0}) {
		t.Errorf("faces %v, %v", c1, c2)
	}
	if m.HasFace(0) {
		t.Error("original face kept")
	}
}

func TestInsertVertex(t *testing.T) {
	m := build(t, []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, [][]int{{0, 1, 2, 3}})
	faces, w, err := m.InsertVertex(0, nil)
	if err != nil {
		t.Fatalf("InsertVertex: %v", err)
	}
	requireValid(t, m)
	if len(faces) != 4 || !m.IsTri() {
		t.Errorf("faces = %v", faces)
	}
	if got := m.Position(w); got != geom.V(0.5, 0.5, 0) {
		t.Errorf("centre = %v", got)
	}

	p := geom.V(0.9, 0.1, 0)
	_, w2, err := m.InsertVertex(faces[0], &p)
	if err != nil {
		t.Fatalf("InsertVertex at point: %v", err)
	}
	if m.Position(w2) != p {
		t.Errorf("inserted at %v", m.Position(w2))
	}
	requireValid(t, m)
}

func TestCollapseEdge(t *testing.T) {
	m := octahedron(t)
	if err := m.CollapseEdge(0, 4, 0.5, false); err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	requireValid(t, m)
	if m.VertexCount() != 5 || m.FaceCount() != 6 || m.EdgeCount() != 9 {
		t.Errorf("after collapse: %s", m)
	}
	if m.HasVertex(4) {
		t.Error("collapsed vertex still present")
	}
	if got := m.Position(0); got != geom.V(0.5, 0, 0.5) {
		t.Errorf("merged vertex at %v", got)
	}
	if !m.IsManifold() {
		t.Error("collapse broke manifoldness")
	}
}

func TestCollapseEdgeRefusals(t *testing.T) {
	tests := []struct {
		name          string
		mesh          func(*testing.T) *Mesh
		u, v          Key
		allowBoundary bool
		want          error
	}{
		{"boundary endpoint", squarePair, 0, 2, false, ErrBoundaryForbidden},
		{"common neighbour across hole", holedTriangle, 3, 4, true, ErrIllegalCollapse},
		{"missing edge", octahedron, 0, 1, false, ErrUnknownKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mesh(t)
			before := faceSet(m)
			err := m.CollapseEdge(tt.u, tt.v, 0.5, tt.allowBoundary)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CollapseEdge error = %v, want %v", err, tt.want)
			}
			if got := faceSet(m); !sameFaces(got, before) {
				t.Error("refused collapse changed the mesh")
			}
			requireValid(t, m)
		})
	}
	if m := holedTriangle(t); m.IsCollapseLegal(3, 4, true) {
		t.Error("IsCollapseLegal = true across the hole")
	}
}

func TestSplitThenCollapseRestores(t *testing.T) {
	m := octahedron(t)
	orig := m.Copy()
	w, err := m.SplitEdge(0, 4, 0.5, false)
	if err != nil {
		t.Fatalf("SplitEdge: %v", err)
	}
	if err := m.CollapseEdge(0, w, 0, false); err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	requireValid(t, m)
	sameTopology(t, orig, m)
}

func TestUnifyCycles(t *testing.T) {
	points := []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {2, 0, 0}, {2, 1, 0}}
	faces := [][]int{{0, 1, 2, 3}, {2, 5, 4, 1}}

	out, err := UnifyCycles(points, faces, 0)
	if err != nil {
		t.Fatalf("UnifyCycles: %v", err)
	}
	if hasDirectedConflict(out) {
		t.Errorf("cycles still disagree: %v", out)
	}
	if !slices.Equal(out[0], faces[0]) {
		t.Errorf("seed face changed: %v", out[0])
	}
	if !slices.Equal(faces[1], []int{2, 5, 4, 1}) {
		t.Error("input modified")
	}
	if _, err := UnifyCycles(points, faces, 5); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("bad seed error = %v", err)
	}
}

func TestFlipCycles(t *testing.T) {
	m := squarePair(t)
	m.FlipCycles()
	requireValid(t, m)
	n, _ := m.FaceNormal(0, true)
	if n.Z > -0.99 {
		t.Errorf("normal after flip = %v", n)
	}
	if err := m.UnifyCycleDirections(0); err != nil {
		t.Fatalf("UnifyCycleDirections: %v", err)
	}
	requireValid(t, m)
}

func TestUnweldVertices(t *testing.T) {
	m := squarePair(t)
	fresh, err := m.UnweldVertices(1)
	if err != nil {
		t.Fatalf("UnweldVertices: %v", err)
	}
	requireValid(t, m)
	if len(fresh) != 3 || m.VertexCount() != 7 {
		t.Errorf("fresh = %v, %s", fresh, m)
	}
	if m.IsConnected() {
		t.Error("unwelded face still connected")
	}
	if got := m.CullUnusedVertices(); !slices.Equal(got, []Key{3}) {
		t.Errorf("CullUnusedVertices = %v, want [3]", got)
	}
}
