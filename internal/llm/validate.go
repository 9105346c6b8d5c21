package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds compiled schemas keyed by name and definition, so
// two schemas that share a name never validate against each other.
var compiledSchemas sync.Map // string -> *jsonschema.Schema

// validateResponse checks structured output against schema. A nil schema
// accepts anything; failures are *ErrInvalidResponse carrying raw.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema %q: %w", schema.Name, err)}
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	key := schema.Name + "\x00" + string(def)
	if cached, ok := compiledSchemas.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Store(key, compiled)
	return compiled, nil
}
