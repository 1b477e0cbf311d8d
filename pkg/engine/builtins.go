package engine

import (
	"fmt"

	"github.com/chazu/facet/pkg/delaunay"
	"github.com/chazu/facet/pkg/draw"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/chazu/facet/pkg/remesh"
	"github.com/chazu/facet/pkg/smooth"
	"github.com/chazu/facet/pkg/subdivide"
	zygo "github.com/glycerine/zygomys/zygo"
)

type builtin func(pa kwArgs) (zygo.Sexp, error)

// registerBuiltins installs the mesh builtins into a zygomys environment.
// Meshes and solids are values: every builtin returns a new one. defmesh and
// draw record results in ws.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, ws *Workspace, k kernel.Kernel) {
	add := func(name string, fn builtin) {
		env.AddFunction(name, func(_ *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			out, err := fn(parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return out, nil
		})
	}

	// (vec3 1 2 3)
	add("vec3", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 3 {
			return nil, fmt.Errorf("requires exactly 3 arguments, got %d", len(pa.positional))
		}
		var xyz [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: vec(xyz)}, nil
	})

	// (mesh-from (list (vec3 0 0 0) ...) (list (list 0 1 2) ...))
	add("mesh_from", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("requires points and faces")
		}
		pts, err := toPoints(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		faces, err := toIndexLists(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("faces: %w", err)
		}
		m, err := mesh.FromVerticesAndFaces(pts, faces)
		if err != nil {
			return nil, err
		}
		return &sexpMesh{m: m}, nil
	})

	// (delaunay points :boundary (list 0 1 2 3) :holes (list (list 4 5 6)))
	add("delaunay", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("requires a point list")
		}
		pts, err := toPoints(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		var opts []delaunay.Option
		if v, ok := pa.kw["boundary"]; ok {
			b, err := toInts(v)
			if err != nil {
				return nil, fmt.Errorf("boundary: %w", err)
			}
			opts = append(opts, delaunay.WithBoundary(b...))
		}
		if v, ok := pa.kw["holes"]; ok {
			holes, err := toIndexLists(v)
			if err != nil {
				return nil, fmt.Errorf("holes: %w", err)
			}
			opts = append(opts, delaunay.WithHoles(holes...))
		}
		res, err := delaunay.Triangulate(pts, opts...)
		if err != nil {
			return nil, err
		}
		return &sexpMesh{m: res.Mesh}, nil
	})

	// (remesh m 0.5 :tol 0.1 :kmax 100 :damping 0.5 :allow-boundary true :fixed (list 0))
	add("remesh", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("requires a mesh and a target length")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return nil, err
		}
		target, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		tol, err := pa.floatArg("tol", 0.1)
		if err != nil {
			return nil, err
		}
		kmax, err := pa.intArg("kmax", 100)
		if err != nil {
			return nil, err
		}
		damping, err := pa.floatArg("damping", 0.5)
		if err != nil {
			return nil, err
		}
		allow, err := pa.boolArg("allow-boundary", false)
		if err != nil {
			return nil, err
		}
		fixed, err := pa.keysArg("fixed")
		if err != nil {
			return nil, err
		}
		out := m.Copy()
		_, err = remesh.Remesh(out, target,
			remesh.WithTolerance(tol), remesh.WithKMax(kmax), remesh.WithDamping(damping),
			remesh.WithAllowBoundary(allow), remesh.WithFixed(fixed...))
		if err != nil {
			return nil, err
		}
		return &sexpMesh{m: out}, nil
	})

	// (smooth m :scheme :area :iterations 10 :damping 0.5 :lmin 0.4 :lmax 0.6)
	add("smooth", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("requires a mesh")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return nil, err
		}
		name, err := pa.keywordArg("scheme", smooth.SchemeCentroid.String())
		if err != nil {
			return nil, err
		}
		scheme, err := smooth.ParseScheme(name)
		if err != nil {
			return nil, err
		}
		iterations, err := pa.intArg("iterations", 1)
		if err != nil {
			return nil, err
		}
		damping, err := pa.floatArg("damping", 1)
		if err != nil {
			return nil, err
		}
		allow, err := pa.boolArg("allow-boundary", false)
		if err != nil {
			return nil, err
		}
		fixed, err := pa.keysArg("fixed")
		if err != nil {
			return nil, err
		}
		opts := []smooth.Option{
			smooth.WithIterations(iterations), smooth.WithDamping(damping),
			smooth.WithAllowBoundary(allow), smooth.WithFixed(fixed...),
		}
		if scheme == smooth.SchemeLength {
			lmin, err := pa.floatArg("lmin", 0)
			if err != nil {
				return nil, err
			}
			lmax, err := pa.floatArg("lmax", 0)
			if err != nil {
				return nil, err
			}
			opts = append(opts, smooth.WithLengthBounds(lmin, lmax))
		}
		out := m.Copy()
		if _, err := smooth.Smooth(out, scheme, opts...); err != nil {
			return nil, err
		}
		return &sexpMesh{m: out}, nil
	})

	// (subdivide m :scheme :catmull-clark :k 2 :fixed (list 0))
	add("subdivide", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("requires a mesh")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return nil, err
		}
		name, err := pa.keywordArg("scheme", subdivide.SchemeCatmullClark.String())
		if err != nil {
			return nil, err
		}
		scheme, err := subdivide.ParseScheme(name)
		if err != nil {
			return nil, err
		}
		levels, err := pa.intArg("k", 1)
		if err != nil {
			return nil, err
		}
		fixed, err := pa.keysArg("fixed")
		if err != nil {
			return nil, err
		}
		out, err := subdivide.Subdivide(m, scheme, levels, subdivide.WithFixed(fixed...))
		if err != nil {
			return nil, err
		}
		return &sexpMesh{m: out}, nil
	})

	registerSolids(add, k)

	// (defmesh "name" m)
	add("defmesh", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("requires a name and a mesh")
		}
		name, err := toString(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		m, err := toMesh(pa.positional[1])
		if err != nil {
			return nil, err
		}
		out := m.Copy()
		ws.define(name, out)
		return &sexpMesh{m: out}, nil
	})

	// (draw m :layer "name" :as :edges)
	add("draw", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("requires a mesh")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return nil, err
		}
		layer := m.Name()
		if v, ok := pa.kw["layer"]; ok {
			if layer, err = toString(v); err != nil {
				return nil, fmt.Errorf("layer: %w", err)
			}
		}
		as, err := pa.keywordArg("as", "faces")
		if err != nil {
			return nil, err
		}
		switch as {
		case "faces":
			draw.Mesh(ws.Scene, layer, m)
		case "edges":
			draw.Edges(ws.Scene, layer, m)
		case "boundary":
			draw.Boundary(ws.Scene, layer, m)
		case "points":
			draw.Points(ws.Scene, layer, m)
		case "clear":
			ws.Scene.ClearLayer(layer)
		default:
			return nil, fmt.Errorf("as: unknown style %q", as)
		}
		return pa.positional[0], nil
	})

	count := func(fn func(m *mesh.Mesh) int) builtin {
		return func(pa kwArgs) (zygo.Sexp, error) {
			if len(pa.positional) != 1 {
				return nil, fmt.Errorf("requires a mesh")
			}
			m, err := toMesh(pa.positional[0])
			if err != nil {
				return nil, err
			}
			return &zygo.SexpInt{Val: int64(fn(m))}, nil
		}
	}
	add("vertex_count", count((*mesh.Mesh).VertexCount))
	add("face_count", count((*mesh.Mesh).FaceCount))
	add("edge_count", count((*mesh.Mesh).EdgeCount))

	// (is-valid m)
	add("is_valid", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("requires a mesh")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return nil, err
		}
		return &zygo.SexpBool{Val: m.IsValid()}, nil
	})
}
