package layout

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed layout.schema.json
var schemaJSON []byte

const schemaURL = "layout.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Schema returns the embedded layout JSON Schema.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// validate checks a JSON-decoded document against the layout schema.
func validate(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return &Error{Message: "compiling layout schema: " + err.Error(), Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return &Error{Message: err.Error(), Err: err}
		}
		leaf := firstLeaf(ve)
		return &Error{Pointer: leaf.InstanceLocation, Message: leaf.Message, Err: err}
	}
	return nil
}

// firstLeaf descends to the most specific cause so the reported pointer
// names the offending field rather than the document root.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
