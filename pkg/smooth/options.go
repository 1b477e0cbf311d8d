package smooth

import (
	"github.com/chazu/facet/pkg/mesh"
)

// Option configures a smoothing run.
type Option func(*options)

type options struct {
	kmax          int
	damping       float64
	fixed         []mesh.Key
	allowBoundary bool
	observer      mesh.Observer
	progress      mesh.Progress
	lmin, lmax    float64
}

func defaultOptions() options {
	return options{
		kmax:    1,
		damping: 1,
	}
}

// WithIterations sets the number of iterations (default 1).
func WithIterations(k int) Option {
	return func(o *options) {
		o.kmax = k
	}
}

// WithDamping scales every update: x <- x + d(target - x). Default 1.
func WithDamping(d float64) Option {
	return func(o *options) {
		o.damping = d
	}
}

// WithFixed keeps the given vertices in place.
func WithFixed(keys ...mesh.Key) Option {
	return func(o *options) {
		o.fixed = append(o.fixed, keys...)
	}
}

// WithAllowBoundary lets boundary vertices move. They are fixed by default.
func WithAllowBoundary(allow bool) Option {
	return func(o *options) {
		o.allowBoundary = allow
	}
}

// WithObserver is called after every iteration, typically to pull vertices
// back onto a reference surface.
func WithObserver(obs mesh.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithProgress is called after every iteration with the largest
// displacement as the residual.
func WithProgress(p mesh.Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}

// WithLengthBounds sets the edge length clamp used by SchemeLength.
func WithLengthBounds(lmin, lmax float64) Option {
	return func(o *options) {
		o.lmin, o.lmax = lmin, lmax
	}
}
