package remesh_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/remesh"
)

func equilateral(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.FromVerticesAndFaces(
		[]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {0.5, math.Sqrt(3) / 2, 0}},
		[][]int{{0, 1, 2}})
	if err != nil {
		t.Fatalf("FromVerticesAndFaces: %v", err)
	}
	return m
}

// triangleGrid fills an equilateral triangle of side n with unit triangles.
// Row j holds n+1-j vertices.
func triangleGrid(t *testing.T, n int) *mesh.Mesh {
	t.Helper()
	h := math.Sqrt(3) / 2
	var vs []geom.Vec3
	idx := make(map[[2]int]int)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n-j; i++ {
			idx[[2]int{i, j}] = len(vs)
			vs = append(vs, geom.V(float64(i)+0.5*float64(j), float64(j)*h, 0))
		}
	}
	var fs [][]int
	for j := 0; j < n; j++ {
		for i := 0; i < n-j; i++ {
			fs = append(fs, []int{idx[[2]int{i, j}], idx[[2]int{i + 1, j}], idx[[2]int{i, j + 1}]})
			if i+1 <= n-j-1 {
				fs = append(fs, []int{idx[[2]int{i + 1, j}], idx[[2]int{i + 1, j + 1}], idx[[2]int{i, j + 1}]})
			}
		}
	}
	m, err := mesh.FromVerticesAndFaces(vs, fs)
	if err != nil {
		t.Fatalf("FromVerticesAndFaces: %v", err)
	}
	return m
}

func checkLengths(t *testing.T, m *mesh.Mesh, target, tol float64) {
	t.Helper()
	lmin, lmax := remesh.LengthBounds(target, tol)
	for _, e := range m.Edges() {
		l, err := m.EdgeLength(e.U, e.V)
		if err != nil {
			t.Fatalf("EdgeLength(%d, %d): %v", e.U, e.V, err)
		}
		if l < lmin || l > lmax {
			t.Errorf("edge %d-%d has length %g, want [%g, %g]", e.U, e.V, l, lmin, lmax)
		}
	}
}

func TestLengthBounds(t *testing.T) {
	lmin, lmax := remesh.LengthBounds(0.3, 0.1)
	if math.Abs(lmin-0.216) > 1e-12 || math.Abs(lmax-0.44) > 1e-12 {
		t.Errorf("LengthBounds(0.3, 0.1) = %g, %g", lmin, lmax)
	}
}

func TestEquilateralTriangleConverges(t *testing.T) {
	m := equilateral(t)
	st, err := remesh.Remesh(m, 0.3, remesh.WithKMax(200), remesh.WithAllowBoundary(true))
	if err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if !st.Converged || st.Iterations > 200 {
		t.Errorf("stats = %+v, want convergence within 200 iterations", st)
	}
	if st.Splits == 0 {
		t.Error("no edge was split")
	}
	if errs := m.Validate(); len(errs) > 0 {
		t.Fatalf("invalid mesh: %v", errs)
	}
	if !m.IsTri() {
		t.Error("mesh is no longer triangular")
	}
	checkLengths(t, m, 0.3, 0.1)
}

func TestGradual(t *testing.T) {
	m := equilateral(t)
	st, err := remesh.Remesh(m, 0.3,
		remesh.WithKMax(200),
		remesh.WithAllowBoundary(true),
		remesh.WithGradual(0.6, 2))
	if err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if !st.Converged {
		t.Errorf("stats = %+v, want the last pass to converge", st)
	}
	if errs := m.Validate(); len(errs) > 0 {
		t.Fatalf("invalid mesh: %v", errs)
	}
	checkLengths(t, m, 0.3, 0.1)
}

func TestBoundaryNeedsPermission(t *testing.T) {
	m := equilateral(t)
	st, err := remesh.Remesh(m, 0.3)
	if err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if st.Splits != 0 || st.Converged || m.FaceCount() != 1 {
		t.Errorf("stats = %+v with %d faces, want an untouched triangle", st, m.FaceCount())
	}
	if st.Iterations != 100 {
		t.Errorf("iterations = %d, want the default budget", st.Iterations)
	}
}

func TestFixedVertexStays(t *testing.T) {
	m := triangleGrid(t, 4)
	const pinned = mesh.Key(6)
	before := m.Position(pinned)
	if m.IsVertexOnBoundary(pinned) {
		t.Fatalf("vertex %d should be interior", pinned)
	}

	if _, err := remesh.Remesh(m, 0.5, remesh.WithAllowBoundary(true), remesh.WithFixed(pinned)); err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if !m.HasVertex(pinned) {
		t.Fatalf("fixed vertex %d was collapsed away", pinned)
	}
	if got := m.Position(pinned); got != before {
		t.Errorf("fixed vertex moved from %v to %v", before, got)
	}
	if errs := m.Validate(); len(errs) > 0 {
		t.Errorf("invalid mesh: %v", errs)
	}
}

func TestProgressAndObserver(t *testing.T) {
	m := equilateral(t)
	var seen []int
	st, err := remesh.Remesh(m, 0.3,
		remesh.WithKMax(200),
		remesh.WithAllowBoundary(true),
		remesh.WithObserver(mesh.ObserverFunc(func(_ *mesh.Mesh, k int) { seen = append(seen, k) })),
		remesh.WithProgress(func(k int, _ mesh.Report) error {
			if k == 5 {
				return mesh.Stop
			}
			return nil
		}))
	if err != nil {
		t.Fatalf("Remesh: %v", err)
	}
	if st.Iterations != 6 {
		t.Errorf("iterations = %d, want 6", st.Iterations)
	}
	if len(seen) != 1 || seen[0] != 3 {
		t.Errorf("observer saw %v, want [3]", seen)
	}
	if errs := m.Validate(); len(errs) > 0 {
		t.Errorf("invalid mesh after stop: %v", errs)
	}

	boom := errors.New("boom")
	_, err = remesh.Remesh(equilateral(t), 0.3, remesh.WithProgress(func(int, mesh.Report) error { return boom }))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want the callback error", err)
	}
}

func TestErrors(t *testing.T) {
	quad, err := mesh.FromVerticesAndFaces(
		[]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[][]int{{0, 1, 2, 3}})
	if err != nil {
		t.Fatalf("FromVerticesAndFaces: %v", err)
	}
	tests := []struct {
		name   string
		m      *mesh.Mesh
		target float64
		opts   []remesh.Option
		want   error
	}{
		{"quad", quad, 0.3, nil, mesh.ErrNotTriangle},
		{"empty", mesh.New(), 0.3, nil, mesh.ErrEmptyInput},
		{"zero target", equilateral(t), 0, nil, mesh.ErrDegenerate},
		{"tolerance", equilateral(t), 0.3, []remesh.Option{remesh.WithTolerance(1)}, mesh.ErrDegenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := remesh.Remesh(tt.m, tt.target, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
