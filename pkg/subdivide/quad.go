package subdivide

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// Quad splits every edge at its midpoint and every face into quads around
// its centroid. An n-gon becomes n quads.
func Quad(m *mesh.Mesh, k int, opts ...Option) (*mesh.Mesh, error) {
	return run(SchemeQuad, m, k, func(m *mesh.Mesh, _ *options) (*mesh.Mesh, error) {
		r, err := quadLevel(m)
		if err != nil {
			return nil, err
		}
		return r.out, nil
	}, opts)
}

func quadLevel(m *mesh.Mesh) (*refinement, error) {
	r, err := refine(m, true)
	if err != nil {
		return nil, err
	}
	for _, f := range m.Faces() {
		cycle, _ := m.FaceVertices(f)
		attrs := m.FaceAttributes(f)
		n := len(cycle)
		for i, v := range cycle {
			prev, next := cycle[(i+n-1)%n], cycle[(i+1)%n]
			quad := []mesh.Key{v, r.edgePoint(v, next), r.face[f], r.edgePoint(prev, v)}
			if _, err := r.out.AddFace(quad, attrs); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// CatmullClark runs Quad and then moves the points:
//
//   - face points stay at the face centroids;
//   - an interior edge point goes to the mean of its endpoints and the two
//     adjacent face points, a boundary edge point stays at the midpoint;
//   - an interior vertex of valence n goes to (F + 2E + (n-3)V)/n, with F the
//     mean of the surrounding face points and E the mean of the surrounding
//     edge points;
//   - a boundary vertex goes to (E + V)/2, with E the mean of the points on
//     its boundary edges.
//
// Fixed vertices keep their positions.
func CatmullClark(m *mesh.Mesh, k int, opts ...Option) (*mesh.Mesh, error) {
	return run(SchemeCatmullClark, m, k, catmullClarkLevel, opts)
}

func catmullClarkLevel(m *mesh.Mesh, o *options) (*mesh.Mesh, error) {
	r, err := quadLevel(m)
	if err != nil {
		return nil, err
	}
	out := r.out

	for _, e := range m.Edges() {
		w, ok := r.edge[e]
		if !ok || m.IsEdgeOnBoundary(e.U, e.V) {
			continue
		}
		fuv, _ := m.Halfedge(e.U, e.V)
		fvu, _ := m.Halfedge(e.V, e.U)
		p := mean([]geom.Vec3{
			m.Position(e.U), m.Position(e.V),
			out.Position(r.face[fuv]), out.Position(r.face[fvu]),
		})
		out.SetVertexPosition(w, p)
	}

	for _, key := range m.Vertices() {
		if o.fixed[key] || m.IsVertexOrphan(key) {
			continue
		}
		v := m.Position(key)
		nbrs, _ := m.VertexNeighbours(key, false)
		if m.IsVertexOnBoundary(key) {
			var pts []geom.Vec3
			for _, x := range nbrs {
				if m.IsEdgeOnBoundary(key, x) {
					pts = append(pts, out.Position(r.edgePoint(key, x)))
				}
			}
			if len(pts) == 0 {
				continue
			}
			out.SetVertexPosition(key, mean(pts).Add(v).Scale(0.5))
			continue
		}
		faces, _ := m.VertexFaces(key, false)
		fp := make([]geom.Vec3, len(faces))
		for i, f := range faces {
			fp[i] = out.Position(r.face[f])
		}
		ep := make([]geom.Vec3, len(nbrs))
		for i, x := range nbrs {
			ep[i] = out.Position(r.edgePoint(key, x))
		}
		n := float64(len(nbrs))
		p := mean(fp).Add(mean(ep).Scale(2)).Add(v.Scale(n - 3)).Scale(1 / n)
		out.SetVertexPosition(key, p)
	}
	return out, nil
}

// Corner cuts every corner of every face: each n-gon becomes n corner
// triangles around a central n-gon through its edge midpoints.
func Corner(m *mesh.Mesh, k int, opts ...Option) (*mesh.Mesh, error) {
	return run(SchemeCorner, m, k, cornerLevel, opts)
}

func cornerLevel(m *mesh.Mesh, _ *options) (*mesh.Mesh, error) {
	r, err := refine(m, false)
	if err != nil {
		return nil, err
	}
	for _, f := range m.Faces() {
		cycle, _ := m.FaceVertices(f)
		attrs := m.FaceAttributes(f)
		n := len(cycle)
		centre := make([]mesh.Key, n)
		for i, v := range cycle {
			prev, next := cycle[(i+n-1)%n], cycle[(i+1)%n]
			centre[i] = r.edgePoint(v, next)
			if _, err := r.out.AddFace([]mesh.Key{r.edgePoint(prev, v), v, r.edgePoint(v, next)}, attrs); err != nil {
				return nil, err
			}
		}
		if _, err := r.out.AddFace(centre, attrs); err != nil {
			return nil, err
		}
	}
	return r.out, nil
}
