package draw_test

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/facet/pkg/draw"
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
)

// twoCells is a triangle pair and a quad covering [0,2]x[0,1].
func twoCells(t *testing.T) *mesh.Mesh {
	t.Helper()
	m := mesh.New()
	for _, p := range []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {2, 0, 0}, {2, 1, 0}} {
		m.AddVertex(p, nil)
	}
	for _, c := range [][]mesh.Key{{0, 1, 2}, {0, 2, 3}, {1, 4, 5, 2}} {
		if _, err := m.AddFace(c, nil); err != nil {
			t.Fatalf("AddFace(%v): %v", c, err)
		}
	}
	return m
}

func scene(t *testing.T) *draw.Scene {
	t.Helper()
	m := twoCells(t)
	s := draw.NewScene()
	draw.Mesh(s, "faces", m)
	draw.Edges(s, "edges", m)
	draw.Points(s, "points", m)
	return s
}

func TestHelpers(t *testing.T) {
	m := twoCells(t)
	s := draw.NewScene()
	draw.Mesh(s, "mesh", m)
	draw.Faces(s, "faces", m)
	draw.Edges(s, "edges", m)
	draw.Boundary(s, "boundary", m)
	draw.Points(s, "points", m)

	tests := []struct {
		layer              string
		points, lines, fcs int
	}{
		{"mesh", 0, 0, 3},
		{"faces", 0, 0, 3},
		{"edges", 0, m.EdgeCount(), 0},
		{"boundary", 0, 6, 0},
		{"points", 6, 0, 0},
	}
	for _, tt := range tests {
		l := s.Layer(tt.layer)
		if l == nil {
			t.Errorf("layer %q missing", tt.layer)
			continue
		}
		if len(l.Points) != tt.points || len(l.Lines) != tt.lines || len(l.Faces) != tt.fcs {
			t.Errorf("layer %q has %d points, %d lines, %d faces; want %d, %d, %d", tt.layer,
				len(l.Points), len(l.Lines), len(l.Faces), tt.points, tt.lines, tt.fcs)
		}
	}
	if q := s.Layer("mesh").Faces[2]; len(q) != 4 || q[1] != geom.V(2, 0, 0) {
		t.Errorf("quad drawn as %v", q)
	}
}

func TestSceneLayers(t *testing.T) {
	s := draw.NewScene()
	s.AddLine("b", geom.V(0, 0, 0), geom.V(1, 0, 0))
	s.AddPoint("a", geom.V(3, -1, 2))
	s.AddFace("b", []geom.Vec3{{0, 0, 0}, {1, 0, 0}})
	s.AddMesh("c", []geom.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, [][]int{{0, 1, 2}, {0, 1, 7}})
	s.ClearLayer("b")
	s.ClearLayer("missing")

	var names []string
	for _, l := range s.Layers() {
		names = append(names, l.Name)
	}
	if strings.Join(names, ",") != "b,a,c" {
		t.Errorf("layers %v, want b,a,c", names)
	}
	if l := s.Layer("b"); len(l.Lines) != 0 || len(l.Faces) != 0 {
		t.Error("layer b was not cleared")
	}
	if l := s.Layer("c"); len(l.Faces) != 1 {
		t.Errorf("layer c has %d faces, want 1", len(l.Faces))
	}
	if s.Layer("missing") != nil {
		t.Error("ClearLayer created a layer")
	}

	min, max, ok := s.Bounds()
	if !ok || min != geom.V(0, -1, 0) || max != geom.V(3, 1, 2) {
		t.Errorf("Bounds() = %v, %v, %v", min, max, ok)
	}
	if _, _, ok := draw.NewScene().Bounds(); ok {
		t.Error("empty scene has bounds")
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	draw.WriteSVG(&buf, scene(t), 200, 100)
	out := buf.String()
	for _, want := range []string{"<svg", "<polygon", "<line", "<circle", `id="faces"`, `id="points"`, "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg output lacks %q", want)
		}
	}
	if n := strings.Count(out, "<polygon"); n != 3 {
		t.Errorf("got %d polygons, want 3", n)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := draw.WritePNG(&buf, scene(t), 200, 100); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("image is %v", b)
	}
	white := color.RGBAModel.Convert(color.White)
	if got := color.RGBAModel.Convert(img.At(2, 2)); got != white {
		t.Errorf("corner pixel %v, want white", got)
	}
	// (0.7, 0.3) lies inside the first triangle.
	if got := color.RGBAModel.Convert(img.At(66, 66)); got == white {
		t.Error("face interior was not filled")
	}
}

func TestSaveDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.dxf")
	if err := draw.SaveDXF(path, scene(t)); err != nil {
		t.Fatalf("SaveDXF: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(b)
	for _, want := range []string{"LWPOLYLINE", "LINE", "POINT", "faces", "edges", "points"} {
		if !strings.Contains(out, want) {
			t.Errorf("dxf output lacks %q", want)
		}
	}
}
