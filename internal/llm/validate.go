package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var compiled sync.Map // schema root name -> *jsonschema.Schema

// Validate checks data against s, compiling s once per root name.
func (s Schema) Validate(data []byte) error {
	if c, ok := compiled.Load(s.Root); ok {
		return validateCompiled(c.(*jsonschema.Schema), data)
	}
	c, err := compileSchema(s.JSONSchema())
	if err != nil {
		return err
	}
	compiled.Store(s.Root, c)
	return validateCompiled(c, data)
}

// Decode extracts the JSON object from a model reply, validates it against s and
// unmarshals it into v. Every failure is a *ParseError.
func (s Schema) Decode(resp string, v any) error {
	body := []byte(ExtractJSON(resp))
	if !json.Valid(body) {
		return &ParseError{Raw: resp, Err: fmt.Errorf("response is not valid JSON")}
	}
	if err := s.Validate(body); err != nil {
		return &ParseError{Raw: resp, Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{Raw: resp, Err: err}
	}
	return nil
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	c, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return c, nil
}

func validateCompiled(c *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := c.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
