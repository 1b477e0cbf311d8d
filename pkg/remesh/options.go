package remesh

import (
	"github.com/chazu/facet/pkg/mesh"
)

// Option configures Remesh.
type Option func(*options)

type options struct {
	tol           float64
	kmax          int
	damping       float64
	fixed         []mesh.Key
	allowBoundary bool
	observer      mesh.Observer
	progress      mesh.Progress

	gradual    bool
	startL     float64
	steps      int
}

func defaultOptions() options {
	return options{
		tol:     0.1,
		kmax:    100,
		damping: 0.5,
	}
}

// WithTolerance sets the relative tolerance on the edge length bounds
// (default 0.1).
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tol = tol
	}
}

// WithKMax sets the iteration budget (default 100). Each iteration runs one
// sub-phase.
func WithKMax(k int) Option {
	return func(o *options) {
		o.kmax = k
	}
}

// WithDamping sets the damping of the smoothing sub-phase (default 0.5).
func WithDamping(d float64) Option {
	return func(o *options) {
		o.damping = d
	}
}

// WithFixed pins vertices. They are never moved; a short edge at a pinned
// vertex collapses onto it.
func WithFixed(keys ...mesh.Key) Option {
	return func(o *options) {
		o.fixed = append(o.fixed, keys...)
	}
}

// WithAllowBoundary lets boundary edges be split and collapsed. Boundary
// vertices are never smoothed.
func WithAllowBoundary(allow bool) Option {
	return func(o *options) {
		o.allowBoundary = allow
	}
}

// WithObserver is called after every smoothing sub-phase, typically to pull
// vertices back onto a reference surface.
func WithObserver(obs mesh.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithProgress is called after every iteration. Returning mesh.Stop ends
// the run.
func WithProgress(p mesh.Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}

// WithGradual approaches the target length in steps+1 passes, starting from
// start and interpolating linearly. The iteration budget is shared evenly
// between the passes.
func WithGradual(start float64, steps int) Option {
	return func(o *options) {
		o.gradual = true
		o.startL = start
		o.steps = steps
	}
}
