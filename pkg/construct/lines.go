package construct

import (
	"cmp"
	"math"
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
)

// Line is a segment between two points.
type Line [2]geom.Vec3

// FromLines builds a mesh from a planar line network. Endpoints are welded
// by GeometricKey, each line becomes an edge, and the faces are the cycles
// of the planar graph: neighbours are sorted by angle in the XY plane and
// every directed edge is followed by taking the next turn to the left until
// the cycle closes. Cycles that run clockwise are the outer boundaries of
// the network; they are dropped unless keepBoundaryFace is set. Cycles that
// pass a vertex twice (around dangling lines) are skipped.
func FromLines(lines []Line, precision int, keepBoundaryFace bool) (*mesh.Mesh, error) {
	const op = "from lines"
	if err := checkPrecision(op, precision); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &mesh.Error{Kind: mesh.EmptyInput, Op: op}
	}

	w := newWelder(precision)
	nbrs := make(map[int][]int)
	for _, l := range lines {
		a, b := w.add(l[0]), w.add(l[1])
		if a == b || slices.Contains(nbrs[a], b) {
			continue
		}
		nbrs[a] = append(nbrs[a], b)
		nbrs[b] = append(nbrs[b], a)
	}
	for v, ns := range nbrs {
		c := w.points[v]
		slices.SortStableFunc(ns, func(a, b int) int {
			return cmp.Compare(angle(c, w.points[a]), angle(c, w.points[b]))
		})
	}

	m := mesh.New()
	for i, p := range w.points {
		if _, err := m.AddVertexWithKey(mesh.Key(i), p, nil); err != nil {
			return nil, err
		}
	}

	used := make(map[[2]int]bool)
	for u := range w.points {
		for _, v := range nbrs[u] {
			if used[[2]int{u, v}] {
				continue
			}
			cycle := traceLeft(nbrs, used, u, v)
			if cycle == nil {
				continue
			}
			pts := lookup(w.points, cycle)
			if signedArea(pts) < 0 && !keepBoundaryFace {
				continue
			}
			keys := make([]mesh.Key, len(cycle))
			for i, k := range cycle {
				keys[i] = mesh.Key(k)
			}
			if _, err := m.AddFace(keys, nil); err != nil {
				return nil, errors.Wrapf(err, "construct: face through %v", cycle)
			}
		}
	}
	mesh.Logger().Debug("from lines", "lines", len(lines), "vertices", m.VertexCount(), "faces", m.FaceCount())
	return m, nil
}

// traceLeft walks the face on the left of u->v, marking every directed edge
// it uses, until it is back on u->v. It returns nil when the walk passes a
// vertex twice.
func traceLeft(nbrs map[int][]int, used map[[2]int]bool, u, v int) []int {
	first := [2]int{u, v}
	var cycle []int
	seen := make(map[int]bool)
	simple := true
	for d := first; ; {
		used[d] = true
		if seen[d[0]] {
			simple = false
		}
		seen[d[0]] = true
		cycle = append(cycle, d[0])
		ns := nbrs[d[1]]
		i := slices.Index(ns, d[0])
		d = [2]int{d[1], ns[(i+len(ns)-1)%len(ns)]}
		if d == first {
			break
		}
	}
	if !simple || len(cycle) < 3 {
		return nil
	}
	return cycle
}

func angle(c, p geom.Vec3) float64 {
	return math.Atan2(p.Y-c.Y, p.X-c.X)
}

func lookup(points []geom.Vec3, idx []int) []geom.Vec3 {
	out := make([]geom.Vec3, len(idx))
	for i, k := range idx {
		out[i] = points[k]
	}
	return out
}

// signedArea is the XY area of a polygon, positive when counterclockwise.
func signedArea(pts []geom.Vec3) float64 {
	a := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}
