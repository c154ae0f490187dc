package ivy

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the encoded layout changes
const netsSchemaVersion uint16 = 1

type encodedNets struct {
	Schema uint16
	Nets   []namedNet
}

type namedNet struct {
	Name string
	Net  *Net
}

// Encode writes the collection as msgpack, networks in name order.
func Encode(w io.Writer, ns *Nets) error {
	payload := encodedNets{Schema: netsSchemaVersion}
	for _, name := range ns.Names() {
		n, _ := ns.Get(name)
		payload.Nets = append(payload.Nets, namedNet{Name: name, Net: n})
	}
	return msgpack.NewEncoder(w).Encode(&payload)
}

// Decode reads a collection written by Encode.
func Decode(r io.Reader) (*Nets, error) {
	var payload encodedNets
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ivy: decode nets: %w", err)
	}
	if payload.Schema != netsSchemaVersion {
		return nil, fmt.Errorf("ivy: unsupported nets schema %d (want %d)", payload.Schema, netsSchemaVersion)
	}
	ns := NewNets()
	for _, nn := range payload.Nets {
		if err := ns.Insert(nn.Name, nn.Net); err != nil {
			return nil, err
		}
	}
	return ns, nil
}
