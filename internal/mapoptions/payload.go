package mapoptions

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed payload.schema.json
var payloadSchemaJSON []byte

// ErrPayloadInvalid wraps schema violations reported by ValidatePayload.
var ErrPayloadInvalid = errors.New("mapoptions: payload does not match schema")

// Marker is one placemark as consumed by the rendering client.
type Marker struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Details    string   `json:"details"`
	Categories []string `json:"categories"`
	Icon       string   `json:"icon"`
	ZIndex     int      `json:"zIndex"`
}

// Payload bundles the resolved options with the ordered marker list.
type Payload struct {
	Options Options  `json:"options"`
	Markers []Marker `json:"markers"`
}

// Encode serializes the payload. A nil marker list encodes as an empty array.
func (p Payload) Encode() ([]byte, error) {
	markers := make([]Marker, len(p.Markers))
	copy(markers, p.Markers)
	for i := range markers {
		if markers[i].Categories == nil {
			markers[i].Categories = []string{}
		}
	}
	p.Markers = markers
	return json.Marshal(p)
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func payloadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("payload.schema.json", bytes.NewReader(payloadSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("payload.schema.json")
	})
	return compiledSchema, schemaErr
}

// ValidatePayload checks encoded against the embedded payload schema.
func ValidatePayload(encoded []byte) error {
	schema, err := payloadSchema()
	if err != nil {
		return fmt.Errorf("mapoptions: compile payload schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	return nil
}
