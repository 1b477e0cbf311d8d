package mesh

import (
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/dhconnelly/rtreego"
)

// unifyNeighbours is how many centroid neighbours are tried as adjacency
// candidates for each face.
const unifyNeighbours = 10

type centroidItem struct {
	face int
	rect rtreego.Rect
}

func (c *centroidItem) Bounds() rtreego.Rect { return c.rect }

type undirected struct{ a, b int }

func undirectedEdge(a, b int) undirected {
	if a > b {
		a, b = b, a
	}
	return undirected{a, b}
}

// UnifyCycles orients the faces of an index soup consistently. Faces are
// visited breadth first from seed, and each newly reached face is reversed
// when it runs along a shared edge in the same direction as the face it was
// reached from. Adjacency candidates come from the nearest face centroids
// and are confirmed by a shared edge; faces whose shared edges are not all
// found that way fall back to an exact edge lookup. Components not reachable
// from seed are processed from their lowest face index. The input is not
// modified.
func UnifyCycles(points []geom.Vec3, faces [][]int, seed int) ([][]int, error) {
	const op = "unify cycles"
	out := make([][]int, len(faces))
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(points) {
				return nil, &Error{Kind: UnknownKey, Op: op, Vertices: []Key{Key(idx)}, Faces: []FaceKey{FaceKey(i)}}
			}
		}
		out[i] = slices.Clone(f)
	}
	if len(faces) == 0 {
		return out, nil
	}
	if seed < 0 || seed >= len(faces) {
		return nil, &Error{Kind: UnknownKey, Op: op, Faces: []FaceKey{FaceKey(seed)}, Detail: "seed face"}
	}

	adj := soupAdjacency(points, out)

	oriented := make([]bool, len(out))
	visit := func(start int) {
		oriented[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			for _, g := range adj[f] {
				if oriented[g] {
					continue
				}
				if sharesDirectedEdge(out[f], out[g]) {
					slices.Reverse(out[g])
				}
				oriented[g] = true
				queue = append(queue, g)
			}
		}
	}
	visit(seed)
	for f := range out {
		if !oriented[f] {
			visit(f)
		}
	}
	return out, nil
}

// soupAdjacency returns, for each face, the faces sharing an edge with it in
// ascending order.
func soupAdjacency(points []geom.Vec3, faces [][]int) [][]int {
	edgeFaces := make(map[undirected][]int)
	for i, f := range faces {
		for j, a := range f {
			e := undirectedEdge(a, f[(j+1)%len(f)])
			edgeFaces[e] = append(edgeFaces[e], i)
		}
	}

	tree := rtreego.NewTree(3, 25, 50)
	for i, f := range faces {
		pts := make([]geom.Vec3, len(f))
		for j, idx := range f {
			pts[j] = points[idx]
		}
		c, _ := geom.Centroid(pts)
		tree.Insert(&centroidItem{face: i, rect: rtreego.Point(c.Slice()).ToRect(geom.DefaultEpsilon)})
	}
	k := min(unifyNeighbours+1, len(faces))

	adj := make([][]int, len(faces))
	for i, f := range faces {
		pts := make([]geom.Vec3, len(f))
		for j, idx := range f {
			pts[j] = points[idx]
		}
		c, _ := geom.Centroid(pts)
		want := 0
		for j, a := range f {
			if len(edgeFaces[undirectedEdge(a, f[(j+1)%len(f)])]) > 1 {
				want++
			}
		}
		found := 0
		for _, s := range tree.NearestNeighbors(k, rtreego.Point(c.Slice())) {
			item, ok := s.(*centroidItem)
			if !ok || item == nil || item.face == i {
				continue
			}
			if n := sharedEdges(f, faces[item.face]); n > 0 {
				adj[i] = append(adj[i], item.face)
				found += n
			}
		}
		if found < want {
			adj[i] = adj[i][:0]
			for j, a := range f {
				for _, g := range edgeFaces[undirectedEdge(a, f[(j+1)%len(f)])] {
					if g != i && !slices.Contains(adj[i], g) {
						adj[i] = append(adj[i], g)
					}
				}
			}
		}
		slices.Sort(adj[i])
	}
	return adj
}

// sharedEdges counts the undirected edges two cycles have in common.
func sharedEdges(a, b []int) int {
	set := make(map[undirected]bool, len(a))
	for j, x := range a {
		set[undirectedEdge(x, a[(j+1)%len(a)])] = true
	}
	n := 0
	for j, x := range b {
		if set[undirectedEdge(x, b[(j+1)%len(b)])] {
			n++
		}
	}
	return n
}

// sharesDirectedEdge reports whether a and b traverse some edge in the same
// direction, which means their orientations disagree.
func sharesDirectedEdge(a, b []int) bool {
	set := make(map[[2]int]bool, len(a))
	for j, x := range a {
		set[[2]int{x, a[(j+1)%len(a)]}] = true
	}
	for j, x := range b {
		if set[[2]int{x, b[(j+1)%len(b)]}] {
			return true
		}
	}
	return false
}

// UnifyCycleDirections reorients the faces of m to agree with seed, keeping
// every vertex and face handle. Use it after bulk construction from a soup
// whose cycles may disagree. A face that cannot be linked in its new
// orientation aborts with the mesh unchanged.
func (m *Mesh) UnifyCycleDirections(seed FaceKey) error {
	const op = "unify cycle directions"
	fkeys := m.Faces()
	if len(fkeys) == 0 {
		return nil
	}
	si := slices.Index(fkeys, seed)
	if si < 0 {
		return errUnknownFace(op, seed)
	}
	idx := m.KeyIndex()
	keys := m.Vertices()
	points := m.cyclePoints(keys)
	soup := make([][]int, len(fkeys))
	for j, f := range fkeys {
		c := m.face[f].cycle
		soup[j] = make([]int, len(c))
		for i, k := range c {
			soup[j][i] = idx[k]
		}
	}
	unified, err := UnifyCycles(points, soup, si)
	if err != nil {
		return err
	}
	specs := make([]faceSpec, len(fkeys))
	for j, f := range fkeys {
		c := make([]Key, len(unified[j]))
		for i, ix := range unified[j] {
			c[i] = keys[ix]
		}
		specs[j] = faceSpec{key: f, cycle: c, attrs: m.face[f].attrs}
	}
	_, err = m.replaceFaces(op, fkeys, specs)
	return err
}

// FlipCycles reverses the orientation of every face.
func (m *Mesh) FlipCycles() {
	fkeys := m.Faces()
	specs := make([]faceSpec, len(fkeys))
	for j, f := range fkeys {
		c := slices.Clone(m.face[f].cycle)
		slices.Reverse(c)
		specs[j] = faceSpec{key: f, cycle: c, attrs: m.face[f].attrs}
	}
	// Reversing every face of a valid mesh cannot conflict.
	if _, err := m.replaceFaces("flip cycles", fkeys, specs); err != nil {
		Logger().Error("flip cycles", "err", err)
	}
}
