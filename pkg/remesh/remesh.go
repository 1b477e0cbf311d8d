// Package remesh drives a triangle mesh towards a target edge length with
// local operators: long edges are split, short edges collapsed, edges
// swapped towards regular valence and vertices relaxed between rounds.
package remesh

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/smooth"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const op = "remesh"

// Stats summarises a run.
type Stats struct {
	Iterations int
	Splits     int
	Collapses  int
	Swaps      int
	// Converged is set when the last pass ended on a round that changed
	// nothing with every edge inside the length bounds.
	Converged bool
}

// LengthBounds returns the accepted edge length range for a target length L
// and tolerance tol: [(1-tol)(4/5)L, (1+tol)(4/3)L].
func LengthBounds(target, tol float64) (lmin, lmax float64) {
	return (1 - tol) * 4 / 5 * target, (1 + tol) * 4 / 3 * target
}

// Remesh modifies the triangle mesh m in place until its edges are close to
// target. Iteration k runs one sub-phase, cycling split, collapse, swap and
// smooth. The run ends after the swap sub-phase of a round that changed no
// topology and left every edge within LengthBounds, or when the iteration
// budget is spent.
func Remesh(m *mesh.Mesh, target float64, opts ...Option) (Stats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if target <= 0 || math.IsNaN(target) {
		return Stats{}, &mesh.Error{Kind: mesh.Degenerate, Op: op, Detail: fmt.Sprintf("target length %g", target)}
	}
	if o.tol < 0 || o.tol >= 1 {
		return Stats{}, &mesh.Error{Kind: mesh.Degenerate, Op: op, Detail: fmt.Sprintf("tolerance %g outside [0, 1)", o.tol)}
	}
	if m.FaceCount() == 0 {
		return Stats{}, &mesh.Error{Kind: mesh.EmptyInput, Op: op, Detail: "mesh has no faces"}
	}
	if !m.IsTri() {
		return Stats{}, &mesh.Error{Kind: mesh.NotTriangle, Op: op}
	}

	r := &remesher{
		m:     m,
		o:     o,
		fixed: lo.SliceToMap(o.fixed, func(k mesh.Key) (mesh.Key, bool) { return k, true }),
	}
	targets, budget := []float64{target}, o.kmax
	if o.gradual && o.steps > 0 {
		targets = make([]float64, o.steps+1)
		for p := range targets {
			targets[p] = o.startL + (target-o.startL)*float64(p)/float64(o.steps)
		}
		budget = max(o.kmax/len(targets), 1)
	}
	for _, l := range targets {
		stop, err := r.pass(l, budget)
		if err != nil {
			return r.st, errors.Wrapf(err, "remesh: target %g", l)
		}
		if stop {
			break
		}
	}
	mesh.Logger().Info("remesh", "target", target, "iterations", r.st.Iterations,
		"splits", r.st.Splits, "collapses", r.st.Collapses, "swaps", r.st.Swaps, "converged", r.st.Converged)
	return r.st, nil
}

type remesher struct {
	m     *mesh.Mesh
	o     options
	fixed map[mesh.Key]bool
	st    Stats
}

// pass runs up to kmax iterations against one target length. stop is set
// when the progress callback asked to end.
func (r *remesher) pass(target float64, kmax int) (stop bool, err error) {
	lmin, lmax := LengthBounds(target, r.o.tol)
	r.st.Converged = false
	var round mesh.Report
	for k := 0; k < kmax; k++ {
		var rep mesh.Report
		switch k % 4 {
		case 0:
			round = mesh.Report{}
			rep.Splits, err = r.split(lmax)
		case 1:
			rep.Collapses, err = r.collapse(lmin, lmax)
		case 2:
			rep.Swaps, err = r.swap(lmax)
		case 3:
			rep.Residual, err = r.smooth(k)
		}
		if err != nil {
			return false, err
		}
		round.Splits += rep.Splits
		round.Collapses += rep.Collapses
		round.Swaps += rep.Swaps
		r.st.Splits += rep.Splits
		r.st.Collapses += rep.Collapses
		r.st.Swaps += rep.Swaps
		r.st.Iterations++
		mesh.Logger().Debug("remesh iteration", "k", k, "target", target,
			"splits", rep.Splits, "collapses", rep.Collapses, "swaps", rep.Swaps, "residual", rep.Residual)

		if halt, perr := mesh.NotifyProgress(r.o.progress, r.st.Iterations-1, rep); halt || perr != nil {
			return halt, perr
		}
		if k%4 == 2 && !round.Changed() && r.inRange(lmin, lmax) {
			r.st.Converged = true
			return false, nil
		}
	}
	return false, nil
}

func (r *remesher) inRange(lmin, lmax float64) bool {
	for _, e := range r.m.Edges() {
		l, _ := r.m.EdgeLength(e.U, e.V)
		if l < lmin || l > lmax {
			return false
		}
	}
	return true
}

// anchored vertices keep their position through collapses.
func (r *remesher) anchored(k mesh.Key) bool {
	return r.fixed[k] || r.m.IsVertexOnBoundary(k)
}

// split halves every edge longer than lmax whose endpoints were not touched
// earlier in the same sub-phase.
func (r *remesher) split(lmax float64) (int, error) {
	visited := make(map[mesh.Key]bool)
	n := 0
	for _, e := range r.m.Edges() {
		u, v := e.U, e.V
		if visited[u] || visited[v] || !r.m.HasEdge(u, v) {
			continue
		}
		if l, _ := r.m.EdgeLength(u, v); l <= lmax {
			continue
		}
		if _, err := r.m.SplitEdgeTri(u, v, 0.5, r.o.allowBoundary); err != nil {
			if mesh.IsSkipped(err) {
				continue
			}
			return n, err
		}
		visited[u], visited[v] = true, true
		n++
	}
	return n, nil
}

// collapse merges the endpoints of edges shorter than lmin. The merged
// vertex goes to the anchored endpoint, or the midpoint when neither is
// anchored.
func (r *remesher) collapse(lmin, lmax float64) (int, error) {
	visited := make(map[mesh.Key]bool)
	n := 0
	for _, e := range r.m.Edges() {
		if visited[e.U] || visited[e.V] || !r.m.HasEdge(e.U, e.V) {
			continue
		}
		if l, _ := r.m.EdgeLength(e.U, e.V); l >= lmin {
			continue
		}
		keep, drop, t, ok := r.planCollapse(e.U, e.V, lmax)
		if !ok {
			continue
		}
		if err := r.m.CollapseEdge(keep, drop, t, true); err != nil {
			if mesh.IsSkipped(err) {
				continue
			}
			return n, err
		}
		visited[keep], visited[drop] = true, true
		nbrs, _ := r.m.VertexNeighbours(keep, false)
		for _, x := range nbrs {
			visited[x] = true
		}
		n++
	}
	return n, nil
}

// planCollapse picks the surviving endpoint and its new position, and
// rejects collapses that would create an edge longer than lmax or turn a
// face over.
func (r *remesher) planCollapse(u, v mesh.Key, lmax float64) (keep, drop mesh.Key, t float64, ok bool) {
	au, av := r.anchored(u), r.anchored(v)
	if r.m.IsEdgeOnBoundary(u, v) {
		if !r.o.allowBoundary {
			return 0, 0, 0, false
		}
		au, av = r.fixed[u], r.fixed[v]
	}
	switch {
	case au && av:
		return 0, 0, 0, false
	case av:
		u, v = v, u
		t = 0
	case au:
		t = 0
	default:
		t = 0.5
	}
	if !r.m.IsCollapseLegal(u, v, true) {
		return 0, 0, 0, false
	}
	p := r.m.Position(u).Lerp(r.m.Position(v), t)
	for _, k := range []mesh.Key{u, v} {
		nbrs, _ := r.m.VertexNeighbours(k, false)
		for _, x := range nbrs {
			if x != u && x != v && p.Distance(r.m.Position(x)) > lmax {
				return 0, 0, 0, false
			}
		}
		faces, _ := r.m.VertexFaces(k, false)
		for _, f := range faces {
			cycle, _ := r.m.FaceVertices(f)
			if lo.Contains(cycle, u) && lo.Contains(cycle, v) {
				continue
			}
			before := lo.Map(cycle, func(x mesh.Key, _ int) geom.Vec3 { return r.m.Position(x) })
			after := lo.Map(cycle, func(x mesh.Key, _ int) geom.Vec3 {
				if x == u || x == v {
					return p
				}
				return r.m.Position(x)
			})
			n0, _ := geom.PolygonNormal(before, false)
			n1, _ := geom.PolygonNormal(after, false)
			if n0.Dot(n1) <= 0 {
				return 0, 0, 0, false
			}
		}
	}
	return u, v, t, true
}

// valenceError is the distance of a degree from the regular valence: 6
// inside, 4 on the boundary.
func (r *remesher) valenceError(k mesh.Key, degree int) int {
	if r.m.IsVertexOnBoundary(k) {
		degree += 2
	}
	return lo.Ternary(degree > 6, degree-6, 6-degree)
}

// swap flips interior edges when that lowers the summed valence error of
// the four vertices involved, without creating a long edge or a fold.
func (r *remesher) swap(lmax float64) (int, error) {
	n := 0
	for _, e := range r.m.Edges() {
		u, v := e.U, e.V
		a, b, ok := r.m.SwapOpposites(u, v)
		if !ok {
			continue
		}
		du, dv := r.m.VertexDegree(u), r.m.VertexDegree(v)
		da, db := r.m.VertexDegree(a), r.m.VertexDegree(b)
		if du <= 3 || dv <= 3 {
			continue
		}
		before := r.valenceError(u, du) + r.valenceError(v, dv) + r.valenceError(a, da) + r.valenceError(b, db)
		after := r.valenceError(u, du-1) + r.valenceError(v, dv-1) + r.valenceError(a, da+1) + r.valenceError(b, db+1)
		if after >= before {
			continue
		}
		pu, pv, pa, pb := r.m.Position(u), r.m.Position(v), r.m.Position(a), r.m.Position(b)
		if pa.Distance(pb) > lmax {
			continue
		}
		// u-v-a and v-u-b are the current triangles; a-b-v and b-a-u replace them.
		ref := pv.Sub(pu).Cross(pa.Sub(pu)).Add(pu.Sub(pv).Cross(pb.Sub(pv)))
		if pb.Sub(pa).Cross(pv.Sub(pa)).Dot(ref) <= 0 || pa.Sub(pb).Cross(pu.Sub(pb)).Dot(ref) <= 0 {
			continue
		}
		if _, _, err := r.m.SwapEdge(u, v); err != nil {
			if mesh.IsSkipped(err) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// smooth relaxes the free interior vertices once and hands the mesh to the
// observer.
func (r *remesher) smooth(k int) (float64, error) {
	st, err := smooth.Centroid(r.m, smooth.WithDamping(r.o.damping), smooth.WithFixed(r.o.fixed...))
	if err != nil {
		return 0, err
	}
	if r.o.observer != nil {
		r.o.observer.OnIteration(r.m, k)
	}
	return st.Residual, nil
}
