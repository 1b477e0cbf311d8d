package delaunay

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// Option configures Triangulate.
type Option func(*options)

type options struct {
	boundary    []int
	holes       [][]int
	constraints [][2]int
	project     func(geom.Vec3) geom.Vec3
	progress    mesh.Progress
	jitter      float64
	seed        uint64
	eps         float64
	tolerance   float64
}

func defaultOptions() options {
	return options{
		jitter:    1e-8,
		seed:      1,
		eps:       geom.DefaultEpsilon,
		tolerance: 1e-6,
	}
}

// WithBoundary restricts the triangulation to the polygon through the given
// input indices. Faces whose centroid lies outside it are dropped.
func WithBoundary(indices ...int) Option {
	return func(o *options) {
		o.boundary = indices
	}
}

// WithHoles removes the faces whose centroid lies inside any of the given
// index polygons.
func WithHoles(holes ...[]int) Option {
	return func(o *options) {
		o.holes = append(o.holes, holes...)
	}
}

// WithConstraints forces each index pair to appear as an edge of the result.
func WithConstraints(edges ...[2]int) Option {
	return func(o *options) {
		o.constraints = append(o.constraints, edges...)
	}
}

// WithProjection maps input points into the plane before triangulating.
// Only the X and Y of the projected point are used. The default drops Z.
func WithProjection(fn func(geom.Vec3) geom.Vec3) Option {
	return func(o *options) {
		o.project = fn
	}
}

// WithJitter sets the half-width of the uniform perturbation applied to
// every planar coordinate (default 1e-8). Zero disables it.
func WithJitter(j float64) Option {
	return func(o *options) {
		o.jitter = j
	}
}

// WithSeed seeds the jitter source (default 1).
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithEpsilon sets the tolerance of the orientation and in-circle
// predicates (default geom.DefaultEpsilon).
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.eps = eps
	}
}

// WithTolerance sets the distance under which two jittered inputs count as
// the same point (default 1e-6).
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithProgress reports each inserted point. Returning mesh.Stop ends the
// insertion early; the points inserted so far are still triangulated.
func WithProgress(p mesh.Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}
