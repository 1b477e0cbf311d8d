package exchange

import (
	"encoding/json"
	"io"

	"github.com/chazu/facet/pkg/mesh"
	"github.com/pkg/errors"
)

// WriteJSON encodes m as a JSON mesh document.
func WriteJSON(w io.Writer, m *mesh.Mesh, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return errors.Wrap(enc.Encode(m.ToData()), "exchange: write json")
}

// ReadJSON decodes a JSON mesh document.
func ReadJSON(r io.Reader) (*mesh.Mesh, error) {
	var d mesh.Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(err, "exchange: read json")
	}
	m, err := mesh.FromData(&d)
	if err != nil {
		return nil, errors.Wrap(err, "exchange: read json")
	}
	return m, nil
}
