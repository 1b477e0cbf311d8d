package construct

import (
	"slices"
	"strconv"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// SoupOption configures FromSoup.
type SoupOption func(*soupOptions)

type soupOptions struct {
	skipNonManifold bool
}

// WithSkipNonManifold drops faces that would share a half-edge with a face
// added before them instead of failing.
func WithSkipNonManifold() SoupOption {
	return func(o *soupOptions) {
		o.skipNonManifold = true
	}
}

// FromSoup cleans an indexed polygon soup and builds a mesh from it.
// Vertices with the same GeometricKey are welded, faces that collapse to
// fewer than three distinct vertices or repeat a vertex are dropped along
// with duplicates of earlier faces, cycles are unified to a common
// orientation and vertices no face uses are removed. Vertex handles follow
// the first occurrence of each welded point.
func FromSoup(vs []geom.Vec3, fs [][]int, precision int, opts ...SoupOption) (*mesh.Mesh, error) {
	const op = "from soup"
	var o soupOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkPrecision(op, precision); err != nil {
		return nil, err
	}
	if len(fs) == 0 {
		return nil, &mesh.Error{Kind: mesh.EmptyInput, Op: op}
	}

	w := newWelder(precision)
	weld := lo.Map(vs, func(p geom.Vec3, _ int) int { return w.add(p) })

	seen := make(map[string]bool)
	var faces [][]int
	dropped := 0
	for j, f := range fs {
		face := make([]int, 0, len(f))
		for _, i := range f {
			if i < 0 || i >= len(vs) {
				return nil, &mesh.Error{Kind: mesh.UnknownKey, Op: op, Vertices: []mesh.Key{mesh.Key(i)},
					Faces: []mesh.FaceKey{mesh.FaceKey(j)}, Detail: "index out of range"}
			}
			k := weld[i]
			if len(face) > 0 && face[len(face)-1] == k {
				continue
			}
			face = append(face, k)
		}
		for len(face) > 1 && face[len(face)-1] == face[0] {
			face = face[:len(face)-1]
		}
		sig := signature(face)
		if len(face) < 3 || len(lo.Uniq(face)) != len(face) || seen[sig] {
			dropped++
			continue
		}
		seen[sig] = true
		faces = append(faces, face)
	}
	if len(faces) == 0 {
		return nil, &mesh.Error{Kind: mesh.EmptyInput, Op: op, Detail: "every face is degenerate"}
	}

	faces, err := mesh.UnifyCycles(w.points, faces, 0)
	if err != nil {
		return nil, errors.Wrap(err, "construct: soup")
	}

	m := mesh.New()
	for i, p := range w.points {
		if _, err := m.AddVertexWithKey(mesh.Key(i), p, nil); err != nil {
			return nil, err
		}
	}
	skipped := 0
	for _, face := range faces {
		cycle := lo.Map(face, func(i int, _ int) mesh.Key { return mesh.Key(i) })
		if _, err := m.AddFace(cycle, nil); err != nil {
			if o.skipNonManifold && errors.Is(err, mesh.ErrNotManifold) {
				skipped++
				continue
			}
			return nil, errors.Wrap(err, "construct: soup")
		}
	}
	culled := m.CullUnusedVertices()
	mesh.Logger().Info("from soup", "points", len(vs), "welded", len(vs)-len(w.points),
		"dropped", dropped, "skipped", skipped, "culled", len(culled))
	return m, nil
}

// signature identifies a face up to rotation and direction.
func signature(face []int) string {
	s := slices.Clone(face)
	slices.Sort(s)
	return lo.Reduce(s, func(acc string, k int, _ int) string {
		return acc + "," + strconv.Itoa(k)
	}, "")
}
