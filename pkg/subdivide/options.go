package subdivide

import (
	"github.com/chazu/facet/pkg/mesh"
)

// Option configures a subdivision run.
type Option func(*options)

type options struct {
	fixed    map[mesh.Key]bool
	progress mesh.Progress
}

func defaultOptions() options {
	return options{fixed: make(map[mesh.Key]bool)}
}

// WithFixed keeps the given vertices at their positions in every level.
// Schemes that keep the original vertex handles (Quad, CatmullClark, Loop,
// Corner, Tri) honour it; DooSabin replaces every vertex and ignores it.
func WithFixed(keys ...mesh.Key) Option {
	return func(o *options) {
		for _, k := range keys {
			o.fixed[k] = true
		}
	}
}

// WithProgress is called after every level with the number of vertices the
// level added. Returning mesh.Stop ends the run with the levels done so far.
func WithProgress(p mesh.Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}
