package draw

import (
	"math"
	"slices"

	"github.com/chazu/facet/pkg/geom"
	"github.com/samber/lo"
)

// Layer holds the geometry drawn on one layer.
type Layer struct {
	Name   string
	Points []geom.Vec3
	Lines  [][2]geom.Vec3
	Faces  [][]geom.Vec3
}

func (l *Layer) empty() bool {
	return len(l.Points) == 0 && len(l.Lines) == 0 && len(l.Faces) == 0
}

// Scene is a Sink that records commands. Layers keep the order in which
// they were first drawn on, and a cleared layer keeps its place.
type Scene struct {
	layers []*Layer
}

var _ Sink = (*Scene)(nil)

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) layer(name string) *Layer {
	if l, ok := lo.Find(s.layers, func(l *Layer) bool { return l.Name == name }); ok {
		return l
	}
	l := &Layer{Name: name}
	s.layers = append(s.layers, l)
	return l
}

// Layer returns the named layer, or nil.
func (s *Scene) Layer(name string) *Layer {
	l, _ := lo.Find(s.layers, func(l *Layer) bool { return l.Name == name })
	return l
}

// Layers returns the layers in drawing order.
func (s *Scene) Layers() []*Layer {
	return slices.Clone(s.layers)
}

func (s *Scene) AddPoint(layer string, p geom.Vec3) {
	l := s.layer(layer)
	l.Points = append(l.Points, p)
}

func (s *Scene) AddLine(layer string, a, b geom.Vec3) {
	l := s.layer(layer)
	l.Lines = append(l.Lines, [2]geom.Vec3{a, b})
}

func (s *Scene) AddFace(layer string, points []geom.Vec3) {
	if len(points) < 3 {
		return
	}
	l := s.layer(layer)
	l.Faces = append(l.Faces, slices.Clone(points))
}

// AddMesh records each face as a polygon. Out of range indices drop the
// face.
func (s *Scene) AddMesh(layer string, vertices []geom.Vec3, faces [][]int) {
	l := s.layer(layer)
	for _, f := range faces {
		if len(f) < 3 || lo.SomeBy(f, func(i int) bool { return i < 0 || i >= len(vertices) }) {
			continue
		}
		l.Faces = append(l.Faces, lo.Map(f, func(i int, _ int) geom.Vec3 { return vertices[i] }))
	}
}

func (s *Scene) ClearLayer(layer string) {
	if l := s.Layer(layer); l != nil {
		l.Points, l.Lines, l.Faces = nil, nil, nil
	}
}

// Bounds returns the bounding box of everything drawn. ok is false for an
// empty scene.
func (s *Scene) Bounds() (min, max geom.Vec3, ok bool) {
	min = geom.V(math.Inf(1), math.Inf(1), math.Inf(1))
	max = geom.V(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	grow := func(p geom.Vec3) {
		min = geom.V(math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z))
		max = geom.V(math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z))
		ok = true
	}
	for _, l := range s.layers {
		lo.ForEach(l.Points, func(p geom.Vec3, _ int) { grow(p) })
		for _, ln := range l.Lines {
			grow(ln[0])
			grow(ln[1])
		}
		for _, f := range l.Faces {
			lo.ForEach(f, func(p geom.Vec3, _ int) { grow(p) })
		}
	}
	return min, max, ok
}

// viewport maps scene XY coordinates onto a raster of the given size with
// y pointing down.
type viewport struct {
	minX, maxY float64
	scale      float64
	margin     float64
}

func (s *Scene) viewport(width, height int) viewport {
	const margin = 10
	min, max, ok := s.Bounds()
	if !ok {
		return viewport{scale: 1, margin: margin}
	}
	w := math.Max(max.X-min.X, geom.DefaultEpsilon)
	h := math.Max(max.Y-min.Y, geom.DefaultEpsilon)
	scale := math.Min((float64(width)-2*margin)/w, (float64(height)-2*margin)/h)
	return viewport{minX: min.X, maxY: max.Y, scale: scale, margin: margin}
}

func (v viewport) xy(p geom.Vec3) (x, y float64) {
	return v.margin + (p.X-v.minX)*v.scale, v.margin + (v.maxY-p.Y)*v.scale
}
