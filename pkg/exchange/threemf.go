package exchange

import (
	"bytes"
	"io"

	"github.com/chazu/facet/pkg/geom"
	"github.com/chazu/facet/pkg/mesh"
	"github.com/hpinc/go3mf"
	"github.com/pkg/errors"
)

// Write3MF writes each mesh as one 3MF object with one build item.
// Polygons are fanned into triangles from their first vertex; orphan
// vertices are kept so indices follow mesh.ToVerticesAndFaces.
func Write3MF(w io.Writer, meshes ...*mesh.Mesh) error {
	model := &go3mf.Model{Units: go3mf.UnitMillimeter}
	for i, m := range meshes {
		id := uint32(i + 1)
		vs, fs := m.ToVerticesAndFaces()
		obj := &go3mf.Object{ID: id, Name: m.Name(), Mesh: new(go3mf.Mesh)}
		for _, p := range vs {
			obj.Mesh.Vertices.Vertex = append(obj.Mesh.Vertices.Vertex,
				go3mf.Point3D{float32(p.X), float32(p.Y), float32(p.Z)})
		}
		for _, f := range fs {
			for j := 1; j+1 < len(f); j++ {
				obj.Mesh.Triangles.Triangle = append(obj.Mesh.Triangles.Triangle,
					go3mf.Triangle{V1: uint32(f[0]), V2: uint32(f[j]), V3: uint32(f[j+1])})
			}
		}
		model.Resources.Objects = append(model.Resources.Objects, obj)
		model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: id})
	}
	return errors.Wrap(go3mf.NewEncoder(w).Encode(model), "exchange: write 3mf")
}

// Read3MF decodes the mesh objects of a 3MF package in resource order.
// Vertices shared by triangles stay shared; no welding is done.
func Read3MF(b []byte) ([]*mesh.Mesh, error) {
	var model go3mf.Model
	if err := go3mf.NewDecoder(bytes.NewReader(b), int64(len(b))).Decode(&model); err != nil {
		return nil, errors.Wrap(err, "exchange: read 3mf")
	}
	var out []*mesh.Mesh
	for _, obj := range model.Resources.Objects {
		if obj.Mesh == nil {
			continue
		}
		vs := make([]geom.Vec3, len(obj.Mesh.Vertices.Vertex))
		for i, p := range obj.Mesh.Vertices.Vertex {
			vs[i] = geom.V(float64(p[0]), float64(p[1]), float64(p[2]))
		}
		fs := make([][]int, len(obj.Mesh.Triangles.Triangle))
		for i, t := range obj.Mesh.Triangles.Triangle {
			fs[i] = []int{int(t.V1), int(t.V2), int(t.V3)}
		}
		m, err := mesh.FromVerticesAndFaces(vs, fs)
		if err != nil {
			return nil, errors.Wrapf(err, "exchange: 3mf object %d", obj.ID)
		}
		if obj.Name != "" {
			m.Attributes["name"] = obj.Name
		}
		out = append(out, m)
	}
	return out, nil
}
