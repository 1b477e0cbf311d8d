// Package draw sends mesh geometry to drawing sinks. A Sink receives plain
// drawing commands and owns whatever it creates; Scene is an in-memory sink
// that the DXF, SVG and PNG writers render.
package draw

import (
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/samber/lo"
)

// Sink receives drawing commands grouped by layer.
type Sink interface {
	AddPoint(layer string, p geom.Vec3)
	AddLine(layer string, a, b geom.Vec3)
	AddFace(layer string, points []geom.Vec3)
	AddMesh(layer string, vertices []geom.Vec3, faces [][]int)
	ClearLayer(layer string)
}

// Mesh sends the faces of m as one mesh command.
func Mesh(s Sink, layer string, m *mesh.Mesh) {
	vs, fs := m.ToVerticesAndFaces()
	s.AddMesh(layer, vs, fs)
}

// Faces sends every face of m as its own polygon.
func Faces(s Sink, layer string, m *mesh.Mesh) {
	for _, f := range m.Faces() {
		pts, err := m.FacePoints(f)
		if err != nil {
			continue
		}
		s.AddFace(layer, pts)
	}
}

// Edges sends every edge of m as a line.
func Edges(s Sink, layer string, m *mesh.Mesh) {
	for _, e := range m.Edges() {
		s.AddLine(layer, m.Position(e.U), m.Position(e.V))
	}
}

// Boundary sends the boundary edges of m as lines.
func Boundary(s Sink, layer string, m *mesh.Mesh) {
	for _, e := range m.EdgesOnBoundary() {
		s.AddLine(layer, m.Position(e.U), m.Position(e.V))
	}
}

// Points sends every vertex of m as a point.
func Points(s Sink, layer string, m *mesh.Mesh) {
	lo.ForEach(m.Vertices(), func(k mesh.Key, _ int) {
		s.AddPoint(layer, m.Position(k))
	})
}
