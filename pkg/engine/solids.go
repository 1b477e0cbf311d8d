package engine

import (
	"fmt"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/tessellate"
	zygo "github.com/glycerine/zygomys/zygo"
)

func vec(xyz [3]float64) geom.Vec3 {
	return geom.V(xyz[0], xyz[1], xyz[2])
}

// numbers reads exactly n positional numbers.
func numbers(pa kwArgs, n int) ([]float64, error) {
	if len(pa.positional) != n {
		return nil, fmt.Errorf("requires %d numbers, got %d arguments", n, len(pa.positional))
	}
	out := make([]float64, n)
	for i, a := range pa.positional {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// registerSolids installs the kernel builtins. Solids stay implicit until
// tessellate samples them into a mesh.
func registerSolids(add func(string, builtin), k kernel.Kernel) {
	// (box 10 20 5)
	add("box", func(pa kwArgs) (zygo.Sexp, error) {
		d, err := numbers(pa, 3)
		if err != nil {
			return nil, err
		}
		return &sexpSolid{s: k.Box(d[0], d[1], d[2])}, nil
	})

	// (cylinder height radius)
	add("cylinder", func(pa kwArgs) (zygo.Sexp, error) {
		d, err := numbers(pa, 2)
		if err != nil {
			return nil, err
		}
		return &sexpSolid{s: k.Cylinder(d[0], d[1])}, nil
	})

	// (sphere radius)
	add("sphere", func(pa kwArgs) (zygo.Sexp, error) {
		d, err := numbers(pa, 1)
		if err != nil {
			return nil, err
		}
		return &sexpSolid{s: k.Sphere(d[0])}, nil
	})

	// (union a b c ...), (difference a b c ...), (intersection a b c ...)
	fold := func(op func(a, b kernel.Solid) kernel.Solid) builtin {
		return func(pa kwArgs) (zygo.Sexp, error) {
			if len(pa.positional) < 2 {
				return nil, fmt.Errorf("requires at least two solids")
			}
			acc, err := toSolid(pa.positional[0])
			if err != nil {
				return nil, err
			}
			for _, a := range pa.positional[1:] {
				s, err := toSolid(a)
				if err != nil {
					return nil, err
				}
				acc = op(acc, s)
			}
			return &sexpSolid{s: acc}, nil
		}
	}
	add("union", fold(k.Union))
	add("difference", fold(k.Difference))
	add("intersection", fold(k.Intersection))

	// (translate s (vec3 1 0 0)), (rotate s (vec3 0 0 90))
	transform := func(op func(s kernel.Solid, x, y, z float64) kernel.Solid) builtin {
		return func(pa kwArgs) (zygo.Sexp, error) {
			if len(pa.positional) != 2 {
				return nil, fmt.Errorf("requires a solid and a vec3")
			}
			s, err := toSolid(pa.positional[0])
			if err != nil {
				return nil, err
			}
			v, err := toVec3(pa.positional[1])
			if err != nil {
				return nil, err
			}
			return &sexpSolid{s: op(s, v.X, v.Y, v.Z)}, nil
		}
	}
	add("translate", transform(k.Translate))
	add("rotate", transform(k.Rotate))

	// (tessellate s :precision 4)
	add("tessellate", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("requires a solid")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return nil, err
		}
		precision, err := pa.intArg("precision", tessellate.DefaultPrecision)
		if err != nil {
			return nil, err
		}
		m, err := tessellate.Solid(k, s, tessellate.WithPrecision(precision))
		if err != nil {
			return nil, err
		}
		return &sexpMesh{m: m}, nil
	})
}
