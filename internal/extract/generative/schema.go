package generative

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateResponse checks the model's reply against the type's declared
// response schema and returns the set of field names that violate it.
// Validation problems outside individual fields are logged and otherwise
// ignored; schema enforcement must never hard-fail the call.
func ValidateResponse(schemaMap map[string]any, payload []byte) map[string]bool {
	rejected := make(map[string]bool)

	b, err := json.Marshal(schemaMap)
	if err != nil {
		log.Printf("generative.ValidateResponse: marshal schema: %v", err)
		return rejected
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", bytes.NewReader(b)); err != nil {
		log.Printf("generative.ValidateResponse: add schema: %v", err)
		return rejected
	}
	schema, err := compiler.Compile("response.json")
	if err != nil {
		log.Printf("generative.ValidateResponse: compile schema: %v", err)
		return rejected
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return rejected
	}
	err = schema.Validate(v)
	if err == nil {
		return rejected
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		log.Printf("generative.ValidateResponse: %v", err)
		return rejected
	}
	collectFieldViolations(ve, rejected)
	return rejected
}

// collectFieldViolations walks the validation error tree and records the
// field name of every leaf located under /fields/.
func collectFieldViolations(ve *jsonschema.ValidationError, rejected map[string]bool) {
	if len(ve.Causes) == 0 {
		if name, ok := strings.CutPrefix(ve.InstanceLocation, "/fields/"); ok {
			if i := strings.IndexByte(name, '/'); i >= 0 {
				name = name[:i]
			}
			rejected[name] = true
		}
		return
	}
	for _, cause := range ve.Causes {
		collectFieldViolations(cause, rejected)
	}
}
