// Package delaunay builds constrained Delaunay triangulations of planar
// point sets as half-edge meshes.
//
// Points are inserted one at a time into a large enclosing triangle
// (Bowyer-Watson with edge flips), constraint edges are recovered by
// retriangulating the triangles they cross, and the result is trimmed to an
// optional outer boundary with holes.
package delaunay

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const op = "delaunay"

// superScale is the size of the enclosing triangle relative to the bounding
// box diagonal of the input.
const superScale = 300

// Result is a triangulation. Mesh vertex i is input point i at its original
// coordinates; Faces lists the triangles as input indices, counter-clockwise
// in the plane, in ascending face handle order.
type Result struct {
	Faces [][3]int
	Mesh  *mesh.Mesh
}

// Triangulate computes the Delaunay triangulation of points in the XY plane
// (or the plane given by WithProjection). Runs with the same options are
// identical.
func Triangulate(points []geom.Vec3, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	n := len(points)
	if n < 3 {
		return nil, &mesh.Error{Kind: mesh.EmptyInput, Op: op, Detail: fmt.Sprintf("%d points, need at least 3", n)}
	}
	if err := o.checkIndices(n); err != nil {
		return nil, err
	}

	plane := o.embed(points)
	bmin, bmax, err := geom.BoundingBox(plane)
	if err != nil {
		return nil, errors.Wrap(err, "delaunay: bounds")
	}
	diag := bmax.Sub(bmin).Length2D()
	if diag <= o.tolerance {
		return nil, &mesh.Error{Kind: mesh.Degenerate, Op: op, Detail: "all points coincide"}
	}
	if i, j, ok := findDuplicate(plane, o.tolerance); ok {
		return nil, &mesh.Error{Kind: mesh.DuplicatePoint, Op: op, Vertices: []mesh.Key{mesh.Key(i), mesh.Key(j)}}
	}

	b, err := newBuilder(plane, diag, o)
	if err != nil {
		return nil, errors.Wrap(err, "delaunay: enclosing triangle")
	}
	if err := b.insertAll(); err != nil {
		return nil, errors.Wrap(err, "delaunay: insert points")
	}
	if err := b.recoverConstraints(); err != nil {
		return nil, errors.Wrap(err, "delaunay: constraints")
	}
	for _, s := range b.super {
		b.m.RemoveVertex(s)
	}
	b.trim()

	for i, p := range points {
		b.m.SetVertexPosition(mesh.Key(i), p)
	}
	res := &Result{Mesh: b.m}
	for _, f := range b.m.Faces() {
		c, _ := b.m.FaceVertices(f)
		res.Faces = append(res.Faces, [3]int{int(c[0]), int(c[1]), int(c[2])})
	}
	mesh.Logger().Info("delaunay", "points", n, "faces", len(res.Faces), "swaps", b.swaps)
	return res, nil
}

func (o *options) checkIndices(n int) error {
	bad := func(i int) error {
		return &mesh.Error{Kind: mesh.UnknownKey, Op: op, Vertices: []mesh.Key{mesh.Key(i)}, Detail: "index out of range"}
	}
	polygons := append([][]int{}, o.holes...)
	if o.boundary != nil {
		polygons = append(polygons, o.boundary)
	}
	for _, poly := range polygons {
		if len(poly) < 3 {
			return &mesh.Error{Kind: mesh.Degenerate, Op: op, Detail: "polygon with fewer than three vertices"}
		}
		for _, i := range poly {
			if i < 0 || i >= n {
				return bad(i)
			}
		}
	}
	for _, c := range o.constraints {
		for _, i := range c {
			if i < 0 || i >= n {
				return bad(i)
			}
		}
		if c[0] == c[1] {
			return &mesh.Error{Kind: mesh.Degenerate, Op: op, Vertices: []mesh.Key{mesh.Key(c[0])}, Detail: "constraint joins a point to itself"}
		}
	}
	return nil
}

// embed projects the input into the plane and applies the jitter.
func (o *options) embed(points []geom.Vec3) []geom.Vec3 {
	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	plane := make([]geom.Vec3, len(points))
	for i, p := range points {
		q := p
		if o.project != nil {
			q = o.project(p)
		}
		q = geom.V(q.X, q.Y, 0)
		if o.jitter > 0 {
			q.X += (2*rng.Float64() - 1) * o.jitter
			q.Y += (2*rng.Float64() - 1) * o.jitter
		}
		plane[i] = q
	}
	return plane
}

// findDuplicate returns the first pair of points closer than tol, sweeping
// in x order.
func findDuplicate(pts []geom.Vec3, tol float64) (int, int, bool) {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(pts[a].X, pts[b].X) })
	for i, a := range order {
		for _, b := range order[i+1:] {
			if pts[b].X-pts[a].X > tol {
				break
			}
			if pts[a].DistanceSq2D(pts[b]) <= tol*tol {
				return min(a, b), max(a, b), true
			}
		}
	}
	return 0, 0, false
}

// faceBox is a face bounding box in the point location index.
type faceBox struct {
	face mesh.FaceKey
	rect rtreego.Rect
}

func (f *faceBox) Bounds() rtreego.Rect { return f.rect }

type builder struct {
	m     *mesh.Mesh
	plane []geom.Vec3
	o     options
	super [3]mesh.Key
	tree  *rtreego.Rtree
	boxes map[mesh.FaceKey]*faceBox
	swaps int
}

func newBuilder(plane []geom.Vec3, diag float64, o options) (*builder, error) {
	b := &builder{
		m:     mesh.New(),
		plane: plane,
		o:     o,
		tree:  rtreego.NewTree(2, 25, 50),
		boxes: make(map[mesh.FaceKey]*faceBox),
	}
	for i, p := range plane {
		b.m.AddVertexWithKey(mesh.Key(i), p, nil)
	}
	c, err := geom.Centroid(plane)
	if err != nil {
		return nil, err
	}
	dis := superScale * diag
	b.super = [3]mesh.Key{
		b.m.AddVertex(c.Add(geom.V(0, 2*dis, 0)), nil),
		b.m.AddVertex(c.Add(geom.V(-1.73205*dis, -dis, 0)), nil),
		b.m.AddVertex(c.Add(geom.V(1.73205*dis, -dis, 0)), nil),
	}
	f, err := b.m.AddFace(b.super[:], nil)
	if err != nil {
		return nil, err
	}
	b.index(f)
	return b, nil
}

func (b *builder) pos(k mesh.Key) geom.Vec3 { return b.m.Position(k) }

func (b *builder) index(f mesh.FaceKey) {
	pts, err := b.m.FacePoints(f)
	if err != nil {
		return
	}
	bmin, bmax, _ := geom.BoundingBox(pts)
	rect, err := rtreego.NewRectFromPoints(rtreego.Point{bmin.X, bmin.Y}, rtreego.Point{bmax.X, bmax.Y})
	if err != nil {
		return
	}
	box := &faceBox{face: f, rect: rect}
	b.boxes[f] = box
	b.tree.Insert(box)
}

func (b *builder) unindex(f mesh.FaceKey) {
	if box, ok := b.boxes[f]; ok {
		b.tree.Delete(box)
		delete(b.boxes, f)
	}
}

func (b *builder) reindex(f mesh.FaceKey) {
	b.unindex(f)
	b.index(f)
}

// locate returns a face containing p. Candidates come from the box index;
// a linear scan catches anything the index misses.
func (b *builder) locate(p geom.Vec3) (mesh.FaceKey, bool) {
	var cand []mesh.FaceKey
	for _, s := range b.tree.SearchIntersect(rtreego.Point{p.X, p.Y}.ToRect(b.o.tolerance)) {
		if box, ok := s.(*faceBox); ok {
			cand = append(cand, box.face)
		}
	}
	slices.Sort(cand)
	if f, ok := b.firstContaining(p, cand); ok {
		return f, true
	}
	return b.firstContaining(p, b.m.Faces())
}

func (b *builder) firstContaining(p geom.Vec3, faces []mesh.FaceKey) (mesh.FaceKey, bool) {
	for _, f := range faces {
		c, err := b.m.FaceVertices(f)
		if err != nil || len(c) != 3 {
			continue
		}
		if geom.IsPointInTriangle2D(p, b.pos(c[0]), b.pos(c[1]), b.pos(c[2]), b.o.eps) {
			return f, true
		}
	}
	return mesh.Outside, false
}

func (b *builder) insertAll() error {
	for i, p := range b.plane {
		w := mesh.Key(i)
		f, ok := b.locate(p)
		if !ok {
			return &mesh.Error{Kind: mesh.InvariantViolation, Op: op, Vertices: []mesh.Key{w}, Detail: "point outside the enclosing triangle"}
		}
		fan, err := b.m.FanFace(f, w)
		if err != nil {
			return err
		}
		b.unindex(f)
		for _, g := range fan {
			b.index(g)
		}
		swaps := b.legalize(w, fan)
		b.swaps += swaps

		stop, err := mesh.NotifyProgress(b.o.progress, i, mesh.Report{Inserted: 1, Swaps: swaps})
		if err != nil {
			return err
		}
		if stop {
			mesh.Logger().Debug("delaunay stopped", "inserted", i+1, "points", len(b.plane))
			break
		}
	}
	return nil
}

// legalize drains the suspect stack left by inserting w: each face holds w,
// and the edge opposite w is flipped while w lies strictly inside the
// circumcircle of the triangle across it.
func (b *builder) legalize(w mesh.Key, stack []mesh.FaceKey) int {
	swaps := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, err := b.m.VertexDescendant(f, w)
		if err != nil {
			continue
		}
		y, _ := b.m.VertexDescendant(f, x)
		g, _ := b.m.Halfedge(y, x)
		if g == mesh.Outside {
			continue
		}
		o, _ := b.m.VertexDescendant(g, x)
		if !geom.IsPointInCircumcircle(b.pos(w), b.pos(y), b.pos(x), b.pos(o), b.o.eps) {
			continue
		}
		fa, fb, err := b.m.SwapEdge(x, y)
		if err != nil {
			mesh.Logger().Debug("delaunay flip refused", "u", x, "v", y, "err", err)
			continue
		}
		b.reindex(fa)
		b.reindex(fb)
		swaps++
		stack = append(stack, fa, fb)
	}
	return swaps
}

// recoverConstraints makes every constraint, boundary and hole edge an edge
// of the triangulation.
func (b *builder) recoverConstraints() error {
	edges := slices.Clone(b.o.constraints)
	polygons := append([][]int{}, b.o.holes...)
	if b.o.boundary != nil {
		polygons = append(polygons, b.o.boundary)
	}
	for _, poly := range polygons {
		for i, a := range poly {
			edges = append(edges, [2]int{a, poly[(i+1)%len(poly)]})
		}
	}
	for _, e := range edges {
		u, v := mesh.Key(e[0]), mesh.Key(e[1])
		if b.m.HasEdge(u, v) {
			continue
		}
		if err := b.insertEdge(u, v); err != nil {
			return err
		}
	}
	return nil
}

// insertEdge walks from u to v through the triangles the segment crosses,
// removes them and fills the two polygons on either side of u-v.
func (b *builder) insertEdge(u, v mesh.Key) error {
	pu, pv := b.pos(u), b.pos(v)
	unreachable := func(detail string) error {
		return &mesh.Error{Kind: mesh.ConstraintUnreachable, Op: op, Vertices: []mesh.Key{u, v}, Detail: detail}
	}
	onSegment := func(k mesh.Key) bool {
		p := b.pos(k)
		if math.Abs(geom.Orient2D(pu, pv, p)) > b.o.eps {
			return false
		}
		d := pv.Sub(pu)
		t := p.Sub(pu).Dot(d) / d.LengthSq2D()
		return t > 0 && t < 1
	}

	faces, err := b.m.VertexFaces(u, false)
	if err != nil {
		return err
	}
	f := mesh.Outside
	var x, y mesh.Key
	for _, g := range faces {
		p, _ := b.m.VertexDescendant(g, u)
		q, _ := b.m.VertexDescendant(g, p)
		if onSegment(p) || onSegment(q) {
			return unreachable("a vertex lies on the edge")
		}
		if geom.SegmentsCross2D(pu, pv, b.pos(p), b.pos(q), b.o.eps) {
			f, x, y = g, p, q
			break
		}
	}
	if f == mesh.Outside {
		return unreachable("no triangle around the start crosses the edge")
	}

	var left, right []mesh.Key
	classify := func(k mesh.Key) {
		if geom.Orient2D(pu, pv, b.pos(k)) > 0 {
			if len(left) == 0 || left[len(left)-1] != k {
				left = append(left, k)
			}
		} else if len(right) == 0 || right[len(right)-1] != k {
			right = append(right, k)
		}
	}
	classify(x)
	classify(y)
	crossed := []mesh.FaceKey{f}
	for steps := 0; ; steps++ {
		if steps > b.m.FaceCount() {
			return unreachable("walk did not terminate")
		}
		g, _ := b.m.Halfedge(y, x)
		if g == mesh.Outside {
			return unreachable("walk left the triangulation")
		}
		crossed = append(crossed, g)
		o, _ := b.m.VertexDescendant(g, x)
		if o == v {
			break
		}
		if onSegment(o) {
			return unreachable("a vertex lies on the edge")
		}
		classify(o)
		if geom.SegmentsCross2D(pu, pv, b.pos(x), b.pos(o), b.o.eps) {
			y = o
		} else {
			x = o
		}
	}

	for _, g := range crossed {
		b.unindex(g)
		b.m.DeleteFace(g)
	}
	if err := b.fill(u, v, left); err != nil {
		return err
	}
	return b.fill(u, v, right)
}

// fill triangulates the polygon closed by the base a-c and the chain of
// vertices on one side of it, choosing at each step the chain vertex whose
// circle with the base contains no other.
func (b *builder) fill(a, c mesh.Key, chain []mesh.Key) error {
	if len(chain) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(chain); i++ {
		if geom.IsPointInCircumcircle(b.pos(chain[i]), b.pos(a), b.pos(c), b.pos(chain[best]), b.o.eps) {
			best = i
		}
	}
	d := chain[best]
	if err := b.fill(a, d, chain[:best]); err != nil {
		return err
	}
	if err := b.fill(d, c, chain[best+1:]); err != nil {
		return err
	}
	tri := []mesh.Key{a, c, d}
	if geom.Orient2D(b.pos(a), b.pos(c), b.pos(d)) < 0 {
		tri = []mesh.Key{a, d, c}
	}
	f, err := b.m.AddFace(tri, nil)
	if err != nil {
		return err
	}
	b.index(f)
	return nil
}

// trim drops faces whose centroid is outside the boundary or inside a hole.
func (b *builder) trim() {
	ring := func(poly []int) orb.Ring {
		r := make(orb.Ring, 0, len(poly)+1)
		for _, i := range poly {
			r = append(r, orb.Point{b.plane[i].X, b.plane[i].Y})
		}
		return append(r, r[0])
	}
	var outer orb.Ring
	if b.o.boundary != nil {
		outer = ring(b.o.boundary)
	}
	holes := lo.Map(b.o.holes, func(h []int, _ int) orb.Ring { return ring(h) })

	dropped := 0
	for _, f := range b.m.Faces() {
		c, err := b.m.FaceCentroid(f)
		if err != nil {
			continue
		}
		pt := orb.Point{c.X, c.Y}
		drop := outer != nil && !planar.RingContains(outer, pt)
		if !drop {
			drop = lo.SomeBy(holes, func(h orb.Ring) bool { return planar.RingContains(h, pt) })
		}
		if drop {
			b.m.DeleteFace(f)
			dropped++
		}
	}
	if dropped > 0 {
		mesh.Logger().Debug("delaunay trimmed", "faces", dropped)
	}
}
