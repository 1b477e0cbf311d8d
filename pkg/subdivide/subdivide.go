// Package subdivide refines polygon meshes with the classic subdivision
// schemes. Every scheme returns a new mesh and leaves its input alone; a
// level is computed entirely from the previous level, so the result does
// not depend on visiting order.
package subdivide

import (
	"fmt"
	"maps"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Scheme names a subdivision scheme.
type Scheme int

const (
	SchemeQuad Scheme = iota
	SchemeCatmullClark
	SchemeDooSabin
	SchemeLoop
	SchemeTri
	SchemeCorner
)

var schemeNames = map[Scheme]string{
	SchemeQuad:         "quad",
	SchemeCatmullClark: "catmull-clark",
	SchemeDooSabin:     "doo-sabin",
	SchemeLoop:         "loop",
	SchemeTri:          "tri",
	SchemeCorner:       "corner",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme returns the scheme with the given name.
func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, errors.Errorf("subdivide: unknown scheme %q", name)
}

// Subdivide applies k levels of scheme to m.
func Subdivide(m *mesh.Mesh, scheme Scheme, k int, opts ...Option) (*mesh.Mesh, error) {
	switch scheme {
	case SchemeQuad:
		return Quad(m, k, opts...)
	case SchemeCatmullClark:
		return CatmullClark(m, k, opts...)
	case SchemeDooSabin:
		return DooSabin(m, k, opts...)
	case SchemeLoop:
		return Loop(m, k, opts...)
	case SchemeTri:
		return Tri(m, k, opts...)
	case SchemeCorner:
		return Corner(m, k, opts...)
	}
	return nil, errors.Errorf("subdivide: unknown scheme %d", int(scheme))
}

// level computes one subdivision level of m as a new mesh.
type level func(m *mesh.Mesh, o *options) (*mesh.Mesh, error)

func run(scheme Scheme, m *mesh.Mesh, k int, step level, opts []Option) (*mesh.Mesh, error) {
	if k < 0 {
		return nil, &mesh.Error{Kind: mesh.Degenerate, Op: "subdivide " + scheme.String(), Detail: fmt.Sprintf("level %d", k)}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	subd := m.Copy()
	for i := 0; i < k; i++ {
		next, err := step(subd, &o)
		if err != nil {
			return nil, errors.Wrapf(err, "subdivide %s: level %d", scheme, i)
		}
		added := next.VertexCount() - subd.VertexCount()
		subd = next
		mesh.Logger().Debug("subdivide", "scheme", scheme.String(), "level", i,
			"vertices", subd.VertexCount(), "faces", subd.FaceCount())

		stop, err := mesh.NotifyProgress(o.progress, i, mesh.Report{Inserted: max(added, 0)})
		if err != nil {
			return nil, errors.Wrapf(err, "subdivide %s: level %d", scheme, i)
		}
		if stop {
			break
		}
	}
	return subd, nil
}

// emptyLike returns a mesh without vertices or faces that carries the
// attributes and defaults of m.
func emptyLike(m *mesh.Mesh) *mesh.Mesh {
	out := mesh.New()
	out.Attributes = maps.Clone(m.Attributes)
	out.DefaultVertexAttributes = maps.Clone(m.DefaultVertexAttributes)
	out.DefaultEdgeAttributes = maps.Clone(m.DefaultEdgeAttributes)
	out.DefaultFaceAttributes = maps.Clone(m.DefaultFaceAttributes)
	return out
}

// refinement is a new level that keeps the old vertices under their old
// handles and adds one point per edge and, optionally, one per face.
type refinement struct {
	out  *mesh.Mesh
	edge map[mesh.Edge]mesh.Key
	face map[mesh.FaceKey]mesh.Key
}

// refine seeds the next level of m. Edge points start at the edge midpoint
// and face points at the face centroid. Edges without a face get no point.
func refine(m *mesh.Mesh, facePoints bool) (*refinement, error) {
	r := &refinement{
		out:  emptyLike(m),
		edge: make(map[mesh.Edge]mesh.Key),
		face: make(map[mesh.FaceKey]mesh.Key),
	}
	for _, k := range m.Vertices() {
		if _, err := r.out.AddVertexWithKey(k, m.Position(k), m.VertexAttributes(k)); err != nil {
			return nil, err
		}
	}
	for _, e := range m.Edges() {
		if !hasFace(m, e.U, e.V) {
			continue
		}
		w := r.out.AddVertex(m.Position(e.U).Midpoint(m.Position(e.V)), nil)
		r.edge[e] = w
		r.edge[e.Reversed()] = w
	}
	if !facePoints {
		return r, nil
	}
	for _, f := range m.Faces() {
		c, err := m.FaceCentroid(f)
		if err != nil {
			return nil, err
		}
		r.face[f] = r.out.AddVertex(c, nil)
	}
	return r, nil
}

func (r *refinement) edgePoint(u, v mesh.Key) mesh.Key {
	return r.edge[mesh.Edge{U: u, V: v}]
}

func hasFace(m *mesh.Mesh, u, v mesh.Key) bool {
	fuv, _ := m.Halfedge(u, v)
	fvu, _ := m.Halfedge(v, u)
	return fuv != mesh.Outside || fvu != mesh.Outside
}

func mean(points []geom.Vec3) geom.Vec3 {
	c, _ := geom.Centroid(points)
	return c
}

func positions(m *mesh.Mesh, keys []mesh.Key) []geom.Vec3 {
	return lo.Map(keys, func(k mesh.Key, _ int) geom.Vec3 { return m.Position(k) })
}
