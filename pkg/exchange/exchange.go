// Package exchange reads and writes meshes in the supported file formats.
// JSON and msgpack carry the full half-edge document (mesh.Data); 3MF
// carries triangulated geometry only.
package exchange

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
)

// Format names a file encoding.
type Format string

const (
	JSON    Format = "json"
	Msgpack Format = "msgpack"
	ThreeMF Format = "3mf"
)

// FormatOf picks a format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".msgpack", ".mpk":
		return Msgpack, nil
	case ".3mf":
		return ThreeMF, nil
	}
	return "", errors.Errorf("exchange: no format for %q", path)
}

// Save writes m to path in the format its extension names.
func Save(path string, m *mesh.Mesh) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "exchange: save")
	}
	switch format {
	case JSON:
		err = WriteJSON(f, m, true)
	case Msgpack:
		err = EncodeMsgpack(f, m)
	case ThreeMF:
		err = Write3MF(f, m)
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "exchange: save")
	}
	if err == nil {
		mesh.Logger().Info("saved mesh", "path", path, "format", string(format), "vertices", m.VertexCount(), "faces", m.FaceCount())
	}
	return err
}

// Load reads the mesh stored at path. A 3MF file must hold exactly one
// object; use Read3MF for several.
func Load(path string) (*mesh.Mesh, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == ThreeMF {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "exchange: load")
		}
		ms, err := Read3MF(b)
		if err != nil {
			return nil, err
		}
		if len(ms) != 1 {
			return nil, errors.Errorf("exchange: %s holds %d objects, want 1", path, len(ms))
		}
		return ms[0], nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "exchange: load")
	}
	defer f.Close()
	if format == JSON {
		return ReadJSON(f)
	}
	return DecodeMsgpack(f)
}
