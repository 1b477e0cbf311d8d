package draw

import (
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/facet/pkg/geom"
	"github.com/samber/lo"
)

// palette gives each layer a colour by drawing order.
var palette = []color.RGBA{
	{0xd6, 0x27, 0x28, 0xff},
	{0x1f, 0x77, 0xb4, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff},
	{0x94, 0x67, 0xbd, 0xff},
	{0x17, 0xbe, 0xcf, 0xff},
	{0xbc, 0xbd, 0x22, 0xff},
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WriteSVG renders the XY projection of the scene, fitted to the canvas,
// as one SVG group per layer.
func WriteSVG(w io.Writer, s *Scene, width, height int) {
	v := s.viewport(width, height)
	round := func(f float64) int { return int(math.Round(f)) }
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")
	for i, l := range s.layers {
		if l.empty() {
			continue
		}
		c := hex(palette[i%len(palette)])
		canvas.Gid(l.Name)
		for _, f := range l.Faces {
			xs := lo.Map(f, func(p geom.Vec3, _ int) int { x, _ := v.xy(p); return round(x) })
			ys := lo.Map(f, func(p geom.Vec3, _ int) int { _, y := v.xy(p); return round(y) })
			canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:0.25;stroke:%s;stroke-width:1", c, c))
		}
		for _, ln := range l.Lines {
			x1, y1 := v.xy(ln[0])
			x2, y2 := v.xy(ln[1])
			canvas.Line(round(x1), round(y1), round(x2), round(y2), fmt.Sprintf("stroke:%s;stroke-width:1", c))
		}
		for _, p := range l.Points {
			x, y := v.xy(p)
			canvas.Circle(round(x), round(y), 2, "fill:"+c)
		}
		canvas.Gend()
	}
	canvas.End()
}
