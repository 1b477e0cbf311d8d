package subdivide

import (
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// Loop subdivides a triangle mesh. Each triangle becomes four. An interior
// vertex of valence n moves to (1 - n*a)V + a*sum(neighbours) with
// a = (5/8 - (3/8 + cos(2pi/n)/4)^2)/n; a boundary vertex moves to
// 3/4 V + 1/8 of its two boundary neighbours. An interior edge point sits at
// (3(v1 + v2) + vl + vr)/8, a boundary edge point at the midpoint. Fixed
// vertices keep their positions. Faces other than triangles are refused
// with NotTriangle.
func Loop(m *mesh.Mesh, k int, opts ...Option) (*mesh.Mesh, error) {
	if m.FaceCount() > 0 && !m.IsTri() {
		return nil, &mesh.Error{Kind: mesh.NotTriangle, Op: "subdivide loop"}
	}
	return run(SchemeLoop, m, k, loopLevel, opts)
}

func loopWeight(n int) float64 {
	if n == 3 {
		return 3.0 / 16
	}
	c := 3.0/8 + math.Cos(2*math.Pi/float64(n))/4
	return (5.0/8 - c*c) / float64(n)
}

func loopLevel(m *mesh.Mesh, o *options) (*mesh.Mesh, error) {
	r, err := refine(m, false)
	if err != nil {
		return nil, err
	}
	out := r.out

	for _, key := range m.Vertices() {
		if o.fixed[key] || m.IsVertexOrphan(key) {
			continue
		}
		v := m.Position(key)
		nbrs, _ := m.VertexNeighbours(key, false)
		if m.IsVertexOnBoundary(key) {
			var b []geom.Vec3
			for _, x := range nbrs {
				if m.IsEdgeOnBoundary(key, x) {
					b = append(b, m.Position(x))
				}
			}
			if len(b) != 2 {
				continue
			}
			out.SetVertexPosition(key, v.Scale(0.75).Add(b[0].Add(b[1]).Scale(0.125)))
			continue
		}
		n := len(nbrs)
		a := loopWeight(n)
		var sum geom.Vec3
		for _, p := range positions(m, nbrs) {
			sum = sum.Add(p)
		}
		out.SetVertexPosition(key, v.Scale(1-float64(n)*a).Add(sum.Scale(a)))
	}

	for _, e := range m.Edges() {
		w, ok := r.edge[e]
		if !ok || m.IsEdgeOnBoundary(e.U, e.V) {
			continue
		}
		fuv, _ := m.Halfedge(e.U, e.V)
		fvu, _ := m.Halfedge(e.V, e.U)
		vl, _ := m.VertexDescendant(fuv, e.V)
		vr, _ := m.VertexDescendant(fvu, e.U)
		p := m.Position(e.U).Add(m.Position(e.V)).Scale(3).
			Add(m.Position(vl)).Add(m.Position(vr)).Scale(1.0 / 8)
		out.SetVertexPosition(w, p)
	}

	for _, f := range m.Faces() {
		cycle, _ := m.FaceVertices(f)
		attrs := m.FaceAttributes(f)
		u, v, w := cycle[0], cycle[1], cycle[2]
		uv, vw, wu := r.edgePoint(u, v), r.edgePoint(v, w), r.edgePoint(w, u)
		for _, t := range [][]mesh.Key{{wu, u, uv}, {uv, v, vw}, {vw, w, wu}, {uv, vw, wu}} {
			if _, err := out.AddFace(t, attrs); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Tri inserts a vertex at the centroid of every face and connects it to the
// face corners.
func Tri(m *mesh.Mesh, k int, opts ...Option) (*mesh.Mesh, error) {
	return run(SchemeTri, m, k, func(m *mesh.Mesh, _ *options) (*mesh.Mesh, error) {
		out := m.Copy()
		for _, f := range m.Faces() {
			if _, _, err := out.InsertVertex(f, nil); err != nil {
				return nil, err
			}
		}
		return out, nil
	}, opts)
}
