package mesh

import (
	"github.com/chazu/facet/pkg/geom"
)

// FromVerticesAndFaces builds a mesh from an indexed face set. Vertex i gets
// handle i and face j gets handle j. Faces are normalised like AddFace
// (trailing duplicates stripped) and added in order.
//
// When two faces run along an edge in the same direction the soup is not
// consistently oriented and cannot be linked as is; its cycles are then
// unified against face 0 before building. Any other face that cannot be
// added aborts the build.
func FromVerticesAndFaces(vs []geom.Vec3, fs [][]int) (*Mesh, error) {
	const op = "from vertices and faces"
	faces := make([][]int, len(fs))
	for j, face := range fs {
		c := make([]Key, len(face))
		for i, idx := range face {
			if idx < 0 || idx >= len(vs) {
				return nil, &Error{Kind: UnknownKey, Op: op, Vertices: []Key{Key(idx)},
					Faces: []FaceKey{FaceKey(j)}, Detail: "index out of range"}
			}
			c[i] = Key(idx)
		}
		c = normalizeCycle(c)
		faces[j] = make([]int, len(c))
		for i, k := range c {
			faces[j][i] = int(k)
		}
	}
	if hasDirectedConflict(faces) {
		unified, err := UnifyCycles(vs, faces, 0)
		if err != nil {
			return nil, err
		}
		Logger().Warn("face cycles reoriented", "op", op, "faces", len(faces))
		faces = unified
	}

	m := New()
	for i, p := range vs {
		if _, err := m.AddVertexWithKey(Key(i), p, nil); err != nil {
			return nil, err
		}
	}
	for j, face := range faces {
		cycle := make([]Key, len(face))
		for i, idx := range face {
			cycle[i] = Key(idx)
		}
		if _, err := m.AddFaceWithKey(FaceKey(j), cycle, nil); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// hasDirectedConflict reports whether some directed edge appears in more
// than one face.
func hasDirectedConflict(faces [][]int) bool {
	seen := make(map[[2]int]bool)
	for _, f := range faces {
		for i, a := range f {
			e := [2]int{a, f[(i+1)%len(f)]}
			if seen[e] {
				return true
			}
			seen[e] = true
		}
	}
	return false
}

// ToVerticesAndFaces returns the mesh as an indexed face set. Vertices are
// numbered densely in ascending handle order and faces follow ascending face
// handles.
func (m *Mesh) ToVerticesAndFaces() ([]geom.Vec3, [][]int) {
	idx := m.KeyIndex()
	keys := m.Vertices()
	vs := make([]geom.Vec3, len(keys))
	for i, k := range keys {
		vs[i] = m.vertex[k].pos
	}
	fkeys := m.Faces()
	fs := make([][]int, len(fkeys))
	for j, f := range fkeys {
		c := m.face[f].cycle
		face := make([]int, len(c))
		for i, k := range c {
			face[i] = idx[k]
		}
		fs[j] = face
	}
	return vs, fs
}
