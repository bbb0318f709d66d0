// Package codec abstracts the wire encoding used between the gateway and
// its clients. The server speaks one codec per instance; clients must be
// configured to match.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
}

// Codec is a paired marshaler/unmarshaler with a wire name.
type Codec interface {
	Marshaler
	Unmarshaler

	// Name is the configuration/wire identifier ("json" or "cbor").
	Name() string
	// Binary reports whether messages should travel in binary frames
	// rather than text frames.
	Binary() bool
}

// New returns the codec registered under name.
func New(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "cbor":
		return CBOR{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSON encodes messages as JSON text frames. It is the default codec.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)        { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, dst any) error { return json.Unmarshal(data, dst) }
func (JSON) Name() string                         { return "json" }
func (JSON) Binary() bool                         { return false }

// CBOR encodes messages as CBOR binary frames.
type CBOR struct{}

func (CBOR) Marshal(v any) ([]byte, error)        { return cbor.Marshal(v) }
func (CBOR) Unmarshal(data []byte, dst any) error { return cbor.Unmarshal(data, dst) }
func (CBOR) Name() string                         { return "cbor" }
func (CBOR) Binary() bool                         { return true }
