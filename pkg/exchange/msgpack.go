package exchange

import (
	"io"
	"reflect"

	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

func msgpackHandle() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.MapType = reflect.TypeOf(map[string]any(nil))
	return h
}

// EncodeMsgpack writes the mesh document of m as msgpack.
func EncodeMsgpack(w io.Writer, m *mesh.Mesh) error {
	enc := codec.NewEncoder(w, msgpackHandle())
	return errors.Wrap(enc.Encode(m.ToData()), "exchange: encode msgpack")
}

// DecodeMsgpack reads a msgpack mesh document.
func DecodeMsgpack(r io.Reader) (*mesh.Mesh, error) {
	var d mesh.Data
	if err := codec.NewDecoder(r, msgpackHandle()).Decode(&d); err != nil {
		return nil, errors.Wrap(err, "exchange: decode msgpack")
	}
	m, err := mesh.FromData(&d)
	if err != nil {
		return nil, errors.Wrap(err, "exchange: decode msgpack")
	}
	return m, nil
}
