package draw

import (
	"github.com/pkg/errors"
	"github.com/yofu/dxf"
	dxfcolor "github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"
)

var dxfPalette = []dxfcolor.ColorNumber{
	dxfcolor.Red, dxfcolor.Blue, dxfcolor.Green, dxfcolor.Magenta, dxfcolor.Cyan, dxfcolor.Yellow,
}

// SaveDXF writes the scene to a DXF file, one DXF layer per scene layer.
// Points and lines keep their 3D coordinates; faces are written as closed
// plan outlines.
func SaveDXF(path string, s *Scene) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0
	for i, l := range s.layers {
		if l.empty() {
			continue
		}
		if _, err := d.AddLayer(l.Name, dxfPalette[i%len(dxfPalette)], dxf.DefaultLineType, true); err != nil {
			return errors.Wrapf(err, "draw: dxf layer %q", l.Name)
		}
		for _, p := range l.Points {
			if _, err := d.Point(p.X, p.Y, p.Z); err != nil {
				return errors.Wrap(err, "draw: dxf point")
			}
		}
		for _, ln := range l.Lines {
			a, b := ln[0], ln[1]
			if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
				return errors.Wrap(err, "draw: dxf line")
			}
		}
		for _, f := range l.Faces {
			lwp := entity.NewLwPolyline(len(f) + 1)
			for j, p := range f {
				lwp.Vertices[j] = []float64{p.X, p.Y}
			}
			lwp.Vertices[len(f)] = []float64{f[0].X, f[0].Y}
			d.AddEntity(lwp)
		}
	}
	return errors.Wrap(d.SaveAs(path), "draw: save dxf")
}
