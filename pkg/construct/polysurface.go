package construct

import (
	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
)

// Surface is the edge loop of one face of an exploded polysurface. Its
// segments may come in any order and orientation.
type Surface []Line

// FromPolysurface builds one face per surface. Segment endpoints are welded
// by GeometricKey and each surface's segments are linked head to tail,
// starting from the first one, until the loop closes. Faces from different
// surfaces are unified to a common orientation.
func FromPolysurface(surfaces []Surface, precision int) (*mesh.Mesh, error) {
	const op = "from polysurface"
	if err := checkPrecision(op, precision); err != nil {
		return nil, err
	}
	if len(surfaces) == 0 {
		return nil, &mesh.Error{Kind: mesh.EmptyInput, Op: op}
	}
	w := newWelder(precision)
	faces := make([][]int, 0, len(surfaces))
	for i, s := range surfaces {
		segs := make([][2]int, 0, len(s))
		for _, l := range s {
			a, b := w.add(l[0]), w.add(l[1])
			if a != b {
				segs = append(segs, [2]int{a, b})
			}
		}
		face, err := linkLoop(segs)
		if err != nil {
			return nil, &mesh.Error{Kind: mesh.Degenerate, Op: op, Faces: []mesh.FaceKey{mesh.FaceKey(i)}, Detail: err.Error()}
		}
		faces = append(faces, face)
	}
	m, err := mesh.FromVerticesAndFaces(w.points, faces)
	if err != nil {
		return nil, errors.Wrap(err, "construct: polysurface")
	}
	return m, nil
}

// linkLoop chains segments head to tail into a closed vertex cycle. A
// segment whose tail matches the current end is used reversed.
func linkLoop(segs [][2]int) ([]int, error) {
	if len(segs) < 3 {
		return nil, errors.Errorf("%d segments cannot close a face", len(segs))
	}
	used := make([]bool, len(segs))
	used[0] = true
	start, end := segs[0][0], segs[0][1]
	loop := []int{start}
	for end != start {
		next := -1
		for j, s := range segs {
			if used[j] {
				continue
			}
			switch end {
			case s[0]:
				next = s[1]
			case s[1]:
				next = s[0]
			default:
				continue
			}
			used[j] = true
			break
		}
		if next < 0 {
			return nil, errors.Errorf("loop open at vertex %d", end)
		}
		loop = append(loop, end)
		end = next
	}
	return loop, nil
}
