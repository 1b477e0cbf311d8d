package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/facet/pkg/draw"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/exchange"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
)

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Drawing formats write the scene; the others write meshes.
const (
	formatDXF = "dxf"
	formatSVG = "svg"
	formatPNG = "png"
)

// App runs scripts and writes what they define.
type App struct {
	engine        *engine.Engine
	width, height int
}

// MeshData summarizes one defined mesh.
type MeshData struct {
	Name     string
	Vertices int
	Faces    int
	Edges    int
	Valid    bool
	Color    string
}

// EvalErrorData is an eval error with its source location.
type EvalErrorData struct {
	Line    int
	Col     int
	Message string
}

// EvalResult is the outcome of one script run.
type EvalResult struct {
	Meshes    []MeshData
	Errors    []EvalErrorData
	Workspace *engine.Workspace
}

// NewApp creates an App whose solids are sampled at cells per axis.
func NewApp(cells int) *App {
	return &App{
		engine: engine.NewEngineWithKernel(sdfx.New(cells)),
		width:  800,
		height: 600,
	}
}

// SetTimeout changes the script time limit.
func (a *App) SetTimeout(d time.Duration) {
	a.engine.SetTimeout(d)
}

// Evaluate takes Lisp source and returns mesh summaries + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	ws, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	result.Workspace = ws
	for i, name := range ws.Names() {
		m := ws.Mesh(name)
		result.Meshes = append(result.Meshes, MeshData{
			Name:     name,
			Vertices: m.VertexCount(),
			Faces:    m.FaceCount(),
			Edges:    m.EdgeCount(),
			Valid:    m.IsValid(),
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

// Export writes the workspace into dir and returns the files it created.
// Mesh formats get one file per defined mesh, except 3mf which holds every
// mesh as a separate object of model.3mf. Drawing formats write the scene
// to scene.<format>; a script that drew nothing gets every mesh drawn on a
// layer of its own name.
func (a *App) Export(ws *engine.Workspace, dir, format string) ([]string, error) {
	format = strings.ToLower(format)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "export")
	}
	names := ws.Names()
	meshes := make([]*mesh.Mesh, len(names))
	for i, name := range names {
		meshes[i] = ws.Mesh(name)
	}

	switch format {
	case string(exchange.JSON), string(exchange.Msgpack):
		var paths []string
		for i, m := range meshes {
			path := filepath.Join(dir, names[i]+"."+format)
			if err := exchange.Save(path, m); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil

	case string(exchange.ThreeMF):
		if len(meshes) == 0 {
			return nil, errors.New("export: no meshes defined")
		}
		path := filepath.Join(dir, "model.3mf")
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrap(err, "export")
		}
		defer f.Close()
		if err := exchange.Write3MF(f, meshes...); err != nil {
			return nil, err
		}
		return []string{path}, f.Close()

	case formatDXF, formatSVG, formatPNG:
		scene := ws.Scene
		if len(scene.Layers()) == 0 {
			for i, m := range meshes {
				draw.Mesh(scene, names[i], m)
			}
		}
		path := filepath.Join(dir, "scene."+format)
		if format == formatDXF {
			return []string{path}, draw.SaveDXF(path, scene)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrap(err, "export")
		}
		defer f.Close()
		if format == formatSVG {
			draw.WriteSVG(f, scene, a.width, a.height)
		} else if err := draw.WritePNG(f, scene, a.width, a.height); err != nil {
			return nil, err
		}
		return []string{path}, f.Close()
	}
	return nil, fmt.Errorf("export: unknown format %q", format)
}
