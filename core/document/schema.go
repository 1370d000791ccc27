package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aledsdavies/cobolscope/core/errors"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://cobolscope/program.json"

// Schema returns the JSON Schema (draft 2020-12) describing the JSON document.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	// The schema is self-contained; never resolve $ref over the network.
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("remote $ref not allowed: %s", url)
	}

	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// Validate checks an encoded JSON document against Schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.Wrap(errors.ErrSchemaValidation, "schema compilation failed", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(errors.ErrSchemaValidation, "document is not valid JSON", err)
	}
	if err := schema.Validate(v); err != nil {
		return errors.Wrap(errors.ErrSchemaValidation, "document does not match schema", err)
	}
	return nil
}

// ValidateProgram encodes p and validates the result.
func ValidateProgram(p *Program) error {
	data, err := EncodeJSON(p)
	if err != nil {
		return errors.NewOutputError("JSON encoding failed", err)
	}
	return Validate(data)
}
