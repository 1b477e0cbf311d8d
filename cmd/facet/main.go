// Command facet runs a mesh script and writes the meshes or drawing it
// produces.
//
//	facet -script examples/cube.facet -out build -format 3mf
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chazu/facet/pkg/engine"
)

func main() {
	script := flag.String("script", "", "script file to evaluate")
	out := flag.String("out", ".", "output directory")
	format := flag.String("format", "json", "json, msgpack, 3mf, dxf, svg or png")
	cells := flag.Int("cells", engine.DefaultCells, "marching cubes cells per axis for solids")
	width := flag.Int("width", 800, "drawing width in pixels")
	height := flag.Int("height", 600, "drawing height in pixels")
	timeout := flag.Duration("timeout", engine.EvalTimeout, "script time limit")
	flag.Parse()

	if *script == "" {
		flag.Usage()
		os.Exit(2)
	}
	source, err := os.ReadFile(*script)
	if err != nil {
		log.Fatalf("read script: %v", err)
	}

	app := NewApp(*cells)
	app.width, app.height = *width, *height
	app.SetTimeout(*timeout)

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(os.Stderr, "%s:%d: %s\n", *script, e.Line, e.Message)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %s\n", *script, e.Message)
			}
		}
		os.Exit(1)
	}
	for _, m := range result.Meshes {
		log.Printf("%s: %d vertices, %d faces, %d edges, valid=%t", m.Name, m.Vertices, m.Faces, m.Edges, m.Valid)
	}

	paths, err := app.Export(result.Workspace, *out, *format)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}
