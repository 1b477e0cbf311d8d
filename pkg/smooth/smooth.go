// Package smooth moves mesh vertices towards a local average of their
// neighbourhood without changing topology.
//
// Every scheme runs the same Jacobi loop: positions are snapshotted at the
// start of an iteration, each free vertex computes its target from the
// snapshot, and all damped updates are written at the end. The result does
// not depend on the order vertices are visited.
package smooth

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Scheme selects how a vertex target is computed.
type Scheme int

const (
	// SchemeCentroid targets the mean of the neighbours.
	SchemeCentroid Scheme = iota
	// SchemeCenterOfMass targets the centre of mass of the polygon through
	// the ordered neighbours.
	SchemeCenterOfMass
	// SchemeArea targets the area-weighted mean of the incident face
	// centroids.
	SchemeArea
	// SchemeLength is SchemeCentroid with every neighbour pulled or pushed
	// along its edge to a distance within the length bounds.
	SchemeLength
	// SchemeAngle moves interior vertices of degree 4 to the mean of the
	// midpoints of the two diagonals of their neighbour quadrilateral.
	SchemeAngle
)

func (s Scheme) String() string {
	switch s {
	case SchemeCentroid:
		return "centroid"
	case SchemeCenterOfMass:
		return "center-of-mass"
	case SchemeArea:
		return "area"
	case SchemeLength:
		return "length"
	case SchemeAngle:
		return "angle"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// ParseScheme returns the scheme with the given name.
func ParseScheme(name string) (Scheme, error) {
	for s := SchemeCentroid; s <= SchemeAngle; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, errors.Errorf("smooth: unknown scheme %q", name)
}

// Stats describes a finished run.
type Stats struct {
	Iterations int
	// Residual is the largest displacement of the last iteration.
	Residual float64
}

// Smooth runs scheme on m in place.
func Smooth(m *mesh.Mesh, scheme Scheme, opts ...Option) (Stats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if scheme < SchemeCentroid || scheme > SchemeAngle {
		return Stats{}, errors.Errorf("smooth: unknown scheme %d", int(scheme))
	}
	if scheme == SchemeLength && (o.lmin < 0 || o.lmax <= 0 || o.lmin > o.lmax) {
		return Stats{}, &mesh.Error{Kind: mesh.Degenerate, Op: "smooth",
			Detail: fmt.Sprintf("length bounds [%g, %g]", o.lmin, o.lmax)}
	}

	fixed := lo.SliceToMap(o.fixed, func(k mesh.Key) (mesh.Key, bool) { return k, true })
	free := lo.Filter(m.Vertices(), func(k mesh.Key, _ int) bool {
		return !fixed[k] && !m.IsVertexOrphan(k) && (o.allowBoundary || !m.IsVertexOnBoundary(k))
	})

	var st Stats
	for k := 0; k < o.kmax; k++ {
		snap := m.Positions()
		targets := make(map[mesh.Key]geom.Vec3, len(free))
		for _, key := range free {
			t, ok := target(m, snap, key, scheme, &o)
			if !ok {
				continue
			}
			targets[key] = t
		}
		st.Residual = 0
		for _, key := range free {
			t, ok := targets[key]
			if !ok {
				continue
			}
			p := snap[key]
			step := t.Sub(p).Scale(o.damping)
			m.SetVertexPosition(key, p.Add(step))
			st.Residual = math.Max(st.Residual, step.Length())
		}
		st.Iterations = k + 1
		if o.observer != nil {
			o.observer.OnIteration(m, k)
		}
		mesh.Logger().Debug("smooth", "scheme", scheme, "k", k, "residual", st.Residual)

		stop, err := mesh.NotifyProgress(o.progress, k, mesh.Report{Residual: st.Residual})
		if err != nil {
			return st, errors.Wrapf(err, "smooth: iteration %d", k)
		}
		if stop {
			break
		}
	}
	return st, nil
}

// target computes the new position of key from the snapshot. It reports
// false when the scheme leaves the vertex alone.
func target(m *mesh.Mesh, snap map[mesh.Key]geom.Vec3, key mesh.Key, scheme Scheme, o *options) (geom.Vec3, bool) {
	x := snap[key]
	switch scheme {
	case SchemeCentroid:
		nbrs, _ := m.VertexNeighbours(key, false)
		c, err := geom.Centroid(lookup(snap, nbrs))
		return c, err == nil

	case SchemeCenterOfMass:
		nbrs, _ := m.VertexNeighbours(key, true)
		c, err := geom.CenterOfMassPolygon(lookup(snap, nbrs))
		return c, err == nil

	case SchemeArea:
		faces, _ := m.VertexFaces(key, false)
		if len(faces) == 0 && m.IsVertexLeaf(key) {
			nbrs, _ := m.VertexNeighbours(key, false)
			if f, _ := m.Halfedge(key, nbrs[0]); f != mesh.Outside {
				faces = append(faces, f)
			}
			if f, _ := m.Halfedge(nbrs[0], key); f != mesh.Outside {
				faces = append(faces, f)
			}
		}
		var sum geom.Vec3
		var total float64
		for _, f := range faces {
			cycle, _ := m.FaceVertices(f)
			pts := lookup(snap, cycle)
			c, err := geom.Centroid(pts)
			if err != nil {
				continue
			}
			a := geom.PolygonArea(pts)
			sum = sum.Add(c.Scale(a))
			total += a
		}
		if total == 0 {
			return x, false
		}
		return sum.Scale(1 / total), true

	case SchemeLength:
		nbrs, _ := m.VertexNeighbours(key, false)
		pts := lookup(snap, nbrs)
		for i, p := range pts {
			d := p.Sub(x)
			l := d.Length()
			if l == 0 {
				continue
			}
			pts[i] = x.Add(d.Scale(math.Min(math.Max(l, o.lmin), o.lmax) / l))
		}
		c, err := geom.Centroid(pts)
		return c, err == nil

	case SchemeAngle:
		if m.IsVertexOnBoundary(key) {
			return x, false
		}
		nbrs, _ := m.VertexNeighbours(key, true)
		if len(nbrs) != 4 {
			return x, false
		}
		p := lookup(snap, nbrs)
		ac := p[0].Midpoint(p[2])
		bd := p[1].Midpoint(p[3])
		return ac.Midpoint(bd), true
	}
	return x, false
}

func lookup(snap map[mesh.Key]geom.Vec3, keys []mesh.Key) []geom.Vec3 {
	return lo.Map(keys, func(k mesh.Key, _ int) geom.Vec3 { return snap[k] })
}

// Centroid smooths m towards neighbour centroids.
func Centroid(m *mesh.Mesh, opts ...Option) (Stats, error) {
	return Smooth(m, SchemeCentroid, opts...)
}

// CenterOfMass smooths m towards the centre of mass of each vertex's
// neighbour polygon.
func CenterOfMass(m *mesh.Mesh, opts ...Option) (Stats, error) {
	return Smooth(m, SchemeCenterOfMass, opts...)
}

// Area smooths m towards area-weighted face centroids.
func Area(m *mesh.Mesh, opts ...Option) (Stats, error) {
	return Smooth(m, SchemeArea, opts...)
}

// Length smooths m towards neighbour centroids with every neighbour distance
// clamped to [lmin, lmax].
func Length(m *mesh.Mesh, lmin, lmax float64, opts ...Option) (Stats, error) {
	return Smooth(m, SchemeLength, append(opts, WithLengthBounds(lmin, lmax))...)
}

// Angle equalises the angles around degree-4 interior vertices.
func Angle(m *mesh.Mesh, opts ...Option) (Stats, error) {
	return Smooth(m, SchemeAngle, opts...)
}
