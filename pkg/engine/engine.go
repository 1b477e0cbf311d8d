// Package engine evaluates mesh pipeline scripts. It wraps zygomys in a
// sandboxed environment whose builtins build solids, tessellate them,
// triangulate point sets, refine meshes and name the results.
package engine

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/facet/pkg/draw"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultCells is the marching cubes resolution of the default kernel.
const DefaultCells = 48

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Workspace holds what a script defined: named meshes in definition order
// and the scene its draw calls produced.
type Workspace struct {
	meshes map[string]*mesh.Mesh
	order  []string
	Scene  *draw.Scene
}

func newWorkspace() *Workspace {
	return &Workspace{meshes: make(map[string]*mesh.Mesh), Scene: draw.NewScene()}
}

// define names m, replacing an earlier mesh of the same name in place.
func (w *Workspace) define(name string, m *mesh.Mesh) {
	if _, ok := w.meshes[name]; !ok {
		w.order = append(w.order, name)
	}
	m.Attributes["name"] = name
	w.meshes[name] = m
}

// Mesh returns the mesh defined under name, or nil.
func (w *Workspace) Mesh(name string) *mesh.Mesh {
	return w.meshes[name]
}

// Names returns the defined mesh names in definition order.
func (w *Workspace) Names() []string {
	return slices.Clone(w.order)
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment for
// determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	kernel     kernel.Kernel
	timeout    time.Duration
}

// NewEngine creates an engine backed by the sdfx kernel at DefaultCells.
func NewEngine() *Engine {
	return NewEngineWithKernel(sdfx.New(DefaultCells))
}

// NewEngineWithKernel creates an engine whose solid builtins use k.
func NewEngineWithKernel(k kernel.Kernel) *Engine {
	return &Engine{kernel: k, timeout: EvalTimeout}
}

// SetTimeout changes the evaluation time limit.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
}

// Evaluate runs a script and returns the workspace it built.
//
// Return semantics:
//   - On success: returns workspace + nil errors + nil error
//   - On parse/eval failure: returns nil workspace + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Workspace, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		ws, evalErrs, err := e.evaluate(source)
		ch <- evalResult{ws: ws, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, timeout, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Workspace, []EvalError, error) {
	ws := newWorkspace()
	if strings.TrimSpace(source) == "" {
		return ws, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, ws, e.kernel)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	mesh.Logger().Info("script evaluated", "meshes", len(ws.order), "layers", len(ws.Scene.Layers()))
	return ws, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
