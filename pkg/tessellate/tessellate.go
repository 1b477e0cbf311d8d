// Package tessellate samples kernel solids and welds the resulting triangle
// soups into half-edge meshes. A tree of placed parts produces one mesh per
// part.
package tessellate

import (
	"fmt"

	"github.com/chazu/facet/pkg/construct"
	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/mesh"
)

// DefaultPrecision is the number of decimals used to weld soup points.
const DefaultPrecision = 4

// Option configures tessellation.
type Option func(*options)

type options struct {
	precision int
	strict    bool
}

func defaultOptions() options {
	return options{precision: DefaultPrecision}
}

// WithPrecision sets the welding precision in decimals.
func WithPrecision(p int) Option {
	return func(o *options) {
		o.precision = p
	}
}

// WithStrict fails on triangles that would make the mesh non-manifold
// instead of dropping them.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Solid samples s with k and returns the welded mesh.
func Solid(k kernel.Kernel, s kernel.Solid, opts ...Option) (*mesh.Mesh, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	soup, err := k.ToSoup(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	var soupOpts []construct.SoupOption
	if !o.strict {
		soupOpts = append(soupOpts, construct.WithSkipNonManifold())
	}
	m, err := construct.FromSoup(soup.Points, soup.Faces(), o.precision, soupOpts...)
	if err != nil {
		return nil, fmt.Errorf("tessellate: weld %d triangles: %w", soup.TriangleCount(), err)
	}
	mesh.Logger().Debug("tessellate", "triangles", soup.TriangleCount(), "vertices", m.VertexCount(), "faces", m.FaceCount())
	return m, nil
}

// Part is a node of a placement tree. A node with a Solid is a leaf part;
// otherwise its children are walked with its transform applied.
type Part struct {
	Name        string
	Solid       kernel.Solid
	Translation geom.Vec3
	Rotation    geom.Vec3 // Euler angles in degrees
	Children    []*Part
}

// transformStack accumulates spatial transforms during traversal.
type transformStack struct {
	translations []geom.Vec3
	rotations    []geom.Vec3
}

func (ts *transformStack) push(translation, rotation geom.Vec3) {
	ts.translations = append(ts.translations, translation)
	ts.rotations = append(ts.rotations, rotation)
}

func (ts *transformStack) pop() {
	ts.translations = ts.translations[:len(ts.translations)-1]
	ts.rotations = ts.rotations[:len(ts.rotations)-1]
}

// accumulatedTranslation returns the sum of all translations on the stack.
func (ts *transformStack) accumulatedTranslation() geom.Vec3 {
	var sum geom.Vec3
	for _, t := range ts.translations {
		sum = sum.Add(t)
	}
	return sum
}

// accumulatedRotation returns the sum of all rotations on the stack.
func (ts *transformStack) accumulatedRotation() geom.Vec3 {
	var sum geom.Vec3
	for _, r := range ts.rotations {
		sum = sum.Add(r)
	}
	return sum
}

// Parts walks the placement trees and produces one mesh per leaf part,
// named after the part. The trees are not modified.
func Parts(k kernel.Kernel, roots []*Part, opts ...Option) ([]*mesh.Mesh, error) {
	var meshes []*mesh.Mesh
	ts := &transformStack{}
	for i, root := range roots {
		if root == nil {
			continue
		}
		collected, err := walk(k, root, ts, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: root %d: %w", i, err)
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

func walk(k kernel.Kernel, p *Part, ts *transformStack, opts []Option) ([]*mesh.Mesh, error) {
	ts.push(p.Translation, p.Rotation)
	defer ts.pop()

	if p.Solid != nil {
		m, err := place(k, p, ts, opts)
		if err != nil {
			return nil, err
		}
		return []*mesh.Mesh{m}, nil
	}
	var meshes []*mesh.Mesh
	for _, child := range p.Children {
		collected, err := walk(k, child, ts, opts)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// place applies the accumulated rotation first, then the translation.
func place(k kernel.Kernel, p *Part, ts *transformStack, opts []Option) (*mesh.Mesh, error) {
	s := p.Solid
	if rot := ts.accumulatedRotation(); rot != (geom.Vec3{}) {
		s = k.Rotate(s, rot.X, rot.Y, rot.Z)
	}
	if trans := ts.accumulatedTranslation(); trans != (geom.Vec3{}) {
		s = k.Translate(s, trans.X, trans.Y, trans.Z)
	}
	m, err := Solid(k, s, opts...)
	if err != nil {
		return nil, fmt.Errorf("part %q: %w", p.Name, err)
	}
	if p.Name != "" {
		m.Attributes["name"] = p.Name
	}
	return m, nil
}
