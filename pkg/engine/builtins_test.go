package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/mesh"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(subdivide m :scheme :loop)`,
			expect: `(subdivide m "__kw_scheme" "__kw_loop")`,
		},
		{
			name:   "multiple keywords",
			input:  `(remesh m 0.5 :tol 0.1 :kmax 20)`,
			expect: `(remesh m 0.5 "__kw_tol" 0.1 "__kw_kmax" 20)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(mesh-from pts :allow-boundary true)`,
			expect: `(mesh_from pts "__kw_allow-boundary" true)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:catmull-clark`,
			expect: `"__kw_catmull-clark"`,
		},
		{
			name:   "hyphen inside string preserved",
			input:  `(defmesh "half-cube" m)`,
			expect: `(defmesh "half-cube" m)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Script tests
// ---------------------------------------------------------------------------

// cubeScript defines cube, a unit cube of six outward quads.
const cubeScript = `
(def corners (list
  (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0) (vec3 1 1 0)
  (vec3 0 0 1) (vec3 1 0 1) (vec3 0 1 1) (vec3 1 1 1)))
(def cube (mesh-from corners
  (list (list 0 2 3 1) (list 4 5 7 6) (list 0 1 5 4)
        (list 1 3 7 5) (list 3 2 6 7) (list 2 0 4 6))))
`

func TestCubeSubdivision(t *testing.T) {
	eng := NewEngine()
	ws := evaluateOK(t, eng, cubeScript+`
; two levels of Catmull-Clark
(defmesh "cube" cube)
(draw (defmesh "smooth-cube" (subdivide cube :scheme :catmull-clark :k 2)))
(draw cube :layer "wire" :as :edges)
`)

	if got := ws.Names(); len(got) != 2 || got[0] != "cube" || got[1] != "smooth-cube" {
		t.Fatalf("names = %v, want [cube smooth-cube]", got)
	}
	cube := ws.Mesh("cube")
	if cube.VertexCount() != 8 || cube.FaceCount() != 6 {
		t.Errorf("cube was modified: %s", cube)
	}
	cc := ws.Mesh("smooth-cube")
	if cc.VertexCount() != 98 || cc.FaceCount() != 96 || cc.EdgeCount() != 192 {
		t.Errorf("subdivided cube: %s, want 98 vertices, 96 faces, 192 edges", cc)
	}
	if !cc.IsValid() || !cc.IsManifold() {
		t.Error("subdivided cube is not a valid manifold")
	}
	if cc.Name() != "smooth-cube" {
		t.Errorf("name = %q", cc.Name())
	}

	layers := ws.Scene.Layers()
	if len(layers) != 2 || layers[0].Name != "smooth-cube" || layers[1].Name != "wire" {
		t.Fatalf("layers = %v", layers)
	}
	if n := len(layers[0].Faces); n != 96 {
		t.Errorf("smooth-cube layer has %d faces, want 96", n)
	}
	if n := len(layers[1].Lines); n != 12 {
		t.Errorf("wire layer has %d lines, want 12", n)
	}
}

func TestDefmeshReplaces(t *testing.T) {
	eng := NewEngine()
	ws := evaluateOK(t, eng, cubeScript+`
(defmesh "a" cube)
(defmesh "b" cube)
(defmesh "a" (subdivide cube :scheme :quad))
`)
	if got := ws.Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("names = %v, want [a b]", got)
	}
	if n := ws.Mesh("a").FaceCount(); n != 24 {
		t.Errorf("a has %d faces, want 24", n)
	}
	if ws.Mesh("missing") != nil {
		t.Error("undefined name returned a mesh")
	}
}

func TestDelaunayScript(t *testing.T) {
	eng := NewEngine()
	ws := evaluateOK(t, eng, `
(defmesh "square"
  (delaunay (list (vec3 0 0 0) (vec3 1 0 0) (vec3 1 1 0) (vec3 0 1 0) (vec3 0.5 0.5 0))))
`)
	m := ws.Mesh("square")
	if m == nil {
		t.Fatal("square was not defined")
	}
	if m.VertexCount() != 5 || m.FaceCount() != 4 {
		t.Errorf("got %s, want 5 vertices and 4 faces", m)
	}
	if !m.IsTri() {
		t.Error("delaunay result is not a triangle mesh")
	}
}

func TestRemeshScript(t *testing.T) {
	eng := NewEngine()
	ws := evaluateOK(t, eng, `
(def tri (mesh-from (list (vec3 0 0 0) (vec3 1 0 0) (vec3 0.5 0.8660254037844386 0))
                    (list (list 0 1 2))))
(defmesh "fine" (remesh tri 0.3 :kmax 200 :allow-boundary true))
`)
	m := ws.Mesh("fine")
	if m == nil {
		t.Fatal("fine was not defined")
	}
	if !m.IsValid() || !m.IsTri() {
		t.Error("remeshed triangle is not a valid triangle mesh")
	}
	if m.FaceCount() <= 1 {
		t.Errorf("remesh did not refine: %s", m)
	}
}

func TestSmoothScript(t *testing.T) {
	eng := NewEngine()
	ws := evaluateOK(t, eng, `
(def fan (mesh-from (list (vec3 0 0 0) (vec3 1 0 0) (vec3 1 1 0) (vec3 0 1 0) (vec3 0.3 0.2 0))
                    (list (list 0 1 4) (list 1 2 4) (list 2 3 4) (list 3 0 4))))
(defmesh "before" fan)
(defmesh "after" (smooth fan :scheme :centroid :iterations 30))
`)
	if got := ws.Mesh("before").Position(4); got != geom.V(0.3, 0.2, 0) {
		t.Errorf("input mesh moved to %v", got)
	}
	after := ws.Mesh("after")
	if d := after.Position(4).Distance(geom.V(0.5, 0.5, 0)); d > 1e-6 {
		t.Errorf("centre is %g from the centroid of its neighbours", d)
	}
	for k := 0; k < 4; k++ {
		if got, want := after.Position(mesh.Key(k)), ws.Mesh("before").Position(mesh.Key(k)); got != want {
			t.Errorf("boundary vertex %d moved to %v", k, got)
		}
	}
}

func TestSolidScript(t *testing.T) {
	eng := NewEngineWithKernel(sdfx.New(16))
	ws := evaluateOK(t, eng, `
(defmesh "ball" (tessellate (sphere 10)))
`)
	m := ws.Mesh("ball")
	if m == nil {
		t.Fatal("ball was not defined")
	}
	if !m.IsValid() || m.FaceCount() == 0 {
		t.Fatalf("tessellated sphere is not a valid mesh: %s", m)
	}
	for _, k := range m.Vertices() {
		if r := m.Position(k).Length(); math.Abs(r-10) > 1.5 {
			t.Fatalf("vertex %d at radius %g", k, r)
		}
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"loop on quads", cubeScript + `(subdivide cube :scheme :loop)`, "subdivide"},
		{"unknown scheme", cubeScript + `(subdivide cube :scheme :bogus)`, "bogus"},
		{"box arity", `(box 1 2)`, "box"},
		{"mesh expected", `(face-count (box 1 2 3))`, "expected mesh"},
		{"bad draw style", cubeScript + `(draw cube :as :wireframe)`, "wireframe"},
	}
	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			if ws != nil {
				t.Error("expected nil workspace")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestCountBuiltins(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"(vertex-count cube)", 8},
		{"(face-count cube)", 6},
		{"(edge-count cube)", 12},
		{"(face-count (subdivide cube :scheme :tri))", 24},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			env := zygo.NewZlispSandbox()
			defer env.Stop()
			registerBuiltins(env, newWorkspace(), sdfx.New(16))
			if err := env.LoadString(preprocessSource(cubeScript + tt.expr)); err != nil {
				t.Fatalf("LoadString: %v", err)
			}
			out, err := env.Run()
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			n, ok := out.(*zygo.SexpInt)
			if !ok {
				t.Fatalf("result is %T, want *zygo.SexpInt", out)
			}
			if n.Val != tt.want {
				t.Errorf("%s = %d, want %d", tt.expr, n.Val, tt.want)
			}
		})
	}
}

func TestIsValidBuiltin(t *testing.T) {
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, newWorkspace(), sdfx.New(16))
	if err := env.LoadString(preprocessSource(cubeScript + "(is-valid cube)")); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	out, err := env.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b, ok := out.(*zygo.SexpBool); !ok || !b.Val {
		t.Errorf("(is-valid cube) = %v, want true", out)
	}
}
