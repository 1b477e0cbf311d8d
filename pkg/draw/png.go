package draw

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/pkg/errors"
)

// WritePNG rasterises the XY projection of the scene on a white
// background.
func WritePNG(w io.Writer, s *Scene, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(img)

	gc.SetFillColor(color.White)
	draw2dkit.Rectangle(gc, 0, 0, float64(width), float64(height))
	gc.Fill()

	v := s.viewport(width, height)
	gc.SetLineWidth(1)
	for i, l := range s.layers {
		c := palette[i%len(palette)]
		fill := color.RGBA{c.R / 4, c.G / 4, c.B / 4, 0x40}
		gc.SetStrokeColor(c)
		for _, f := range l.Faces {
			gc.SetFillColor(fill)
			x, y := v.xy(f[0])
			gc.MoveTo(x, y)
			for _, p := range f[1:] {
				x, y = v.xy(p)
				gc.LineTo(x, y)
			}
			gc.Close()
			gc.FillStroke()
		}
		for _, ln := range l.Lines {
			x1, y1 := v.xy(ln[0])
			x2, y2 := v.xy(ln[1])
			gc.MoveTo(x1, y1)
			gc.LineTo(x2, y2)
			gc.Stroke()
		}
		gc.SetFillColor(c)
		for _, p := range l.Points {
			x, y := v.xy(p)
			draw2dkit.Circle(gc, x, y, 2)
			gc.Fill()
		}
	}
	return errors.Wrap(png.Encode(w, img), "draw: encode png")
}
