// Package construct builds meshes from loose geometry: line networks,
// exploded polysurfaces and triangle or polygon soups. Points that share a
// geometric key are welded into one vertex.
package construct

import (
	"math"
	"strconv"
	"strings"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// sanitize snaps coordinates this close to zero to zero, so -0.0001 and
// 0.0001 produce the same key at low precision.
const sanitize = 1e-9

// GeometricKey returns a string that identifies p up to precision decimals.
// Coordinates are truncated, not rounded.
func GeometricKey(p geom.Vec3, precision int) string {
	scale := math.Pow(10, float64(precision))
	parts := make([]string, 3)
	for i, x := range []float64{p.X, p.Y, p.Z} {
		if math.Abs(x) < sanitize {
			x = 0
		}
		x = math.Trunc(x*scale) / scale
		if x == 0 {
			x = 0 // drop the sign of -0
		}
		parts[i] = strconv.FormatFloat(x, 'f', precision, 64)
	}
	return strings.Join(parts, ",")
}

// welder hands out one index per geometric key, in first-seen order.
type welder struct {
	precision int
	index     map[string]int
	points    []geom.Vec3
}

func newWelder(precision int) *welder {
	return &welder{precision: precision, index: make(map[string]int)}
}

func (w *welder) add(p geom.Vec3) int {
	k := GeometricKey(p, w.precision)
	if i, ok := w.index[k]; ok {
		return i
	}
	i := len(w.points)
	w.index[k] = i
	w.points = append(w.points, p)
	return i
}

func checkPrecision(op string, precision int) error {
	if precision < 0 || precision > 15 {
		return &mesh.Error{Kind: mesh.Degenerate, Op: op, Detail: "precision " + strconv.Itoa(precision) + " outside [0, 15]"}
	}
	return nil
}
