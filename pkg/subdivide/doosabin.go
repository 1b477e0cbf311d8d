package subdivide

import (
	"math"
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

type corner struct {
	f mesh.FaceKey
	v mesh.Key
}

// DooSabin replaces every corner of every face by a new point inside the
// face. Corner i of an n-gon goes to sum_j a(i, j) v_j with
// a(i, i) = (n+5)/(4n) and a(i, j) = (3 + 2cos(2pi(i-j)/n))/(4n). The new
// mesh has one face per old face, one per interior vertex and one per
// interior edge. Old handles do not survive, so WithFixed has no effect.
func DooSabin(m *mesh.Mesh, k int, opts ...Option) (*mesh.Mesh, error) {
	return run(SchemeDooSabin, m, k, dooSabinLevel, opts)
}

func dooSabinLevel(m *mesh.Mesh, _ *options) (*mesh.Mesh, error) {
	out := emptyLike(m)
	points := make(map[corner]mesh.Key)

	faces := m.Faces()
	for _, f := range faces {
		cycle, _ := m.FaceVertices(f)
		pts := positions(m, cycle)
		n := len(cycle)
		for i, v := range cycle {
			var p geom.Vec3
			for j, q := range pts {
				p = p.Add(q.Scale(dooSabinWeight(i, j, n)))
			}
			points[corner{f, v}] = out.AddVertex(p, nil)
		}
	}

	for _, f := range faces {
		cycle, _ := m.FaceVertices(f)
		face := make([]mesh.Key, len(cycle))
		for i, v := range cycle {
			face[i] = points[corner{f, v}]
		}
		if _, err := out.AddFace(face, m.FaceAttributes(f)); err != nil {
			return nil, err
		}
	}

	for _, key := range m.Vertices() {
		if m.IsVertexOrphan(key) || m.IsVertexOnBoundary(key) {
			continue
		}
		nbrs, _ := m.VertexNeighbours(key, true)
		var face []mesh.Key
		for _, x := range nbrs {
			if f, _ := m.Halfedge(key, x); f != mesh.Outside {
				face = append(face, points[corner{f, key}])
			}
		}
		if len(face) < 3 {
			continue
		}
		slices.Reverse(face)
		if _, err := out.AddFace(face, nil); err != nil {
			return nil, err
		}
	}

	for _, e := range m.Edges() {
		fuv, _ := m.Halfedge(e.U, e.V)
		fvu, _ := m.Halfedge(e.V, e.U)
		if fuv == mesh.Outside || fvu == mesh.Outside {
			continue
		}
		face := []mesh.Key{
			points[corner{fuv, e.U}], points[corner{fvu, e.U}],
			points[corner{fvu, e.V}], points[corner{fuv, e.V}],
		}
		if _, err := out.AddFace(face, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func dooSabinWeight(i, j, n int) float64 {
	if i == j {
		return float64(n+5) / float64(4*n)
	}
	return (3 + 2*math.Cos(2*math.Pi*float64(i-j)/float64(n))) / float64(4*n)
}
