// Package kernel defines the abstract solid modelling interface used to
// seed meshes. Implementations (sdfx) provide primitives and boolean
// operations behind this interface and hand back an unwelded triangle soup.
package kernel

import "github.com/chazu/facet/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToSoup samples the surface of s into triangles.
	ToSoup(s Solid) (*Soup, error)
}

// Soup is an indexed triangle soup. Points are not shared between
// triangles; welding happens when the soup is turned into a mesh.
type Soup struct {
	Points    []geom.Vec3
	Triangles [][3]int
}

// VertexCount returns the number of points.
func (s *Soup) VertexCount() int {
	return len(s.Points)
}

// TriangleCount returns the number of triangles.
func (s *Soup) TriangleCount() int {
	return len(s.Triangles)
}

// IsEmpty returns true if the soup has no triangles.
func (s *Soup) IsEmpty() bool {
	return len(s.Triangles) == 0
}

// Faces returns the triangles as polygon index lists.
func (s *Soup) Faces() [][]int {
	fs := make([][]int, len(s.Triangles))
	for i, t := range s.Triangles {
		fs[i] = []int{t[0], t[1], t[2]}
	}
	return fs
}

// Add appends a triangle with its own three points.
func (s *Soup) Add(a, b, c geom.Vec3) {
	i := len(s.Points)
	s.Points = append(s.Points, a, b, c)
	s.Triangles = append(s.Triangles, [3]int{i, i + 1, i + 2})
}
