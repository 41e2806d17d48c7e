package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// ToJSONSchema converts a struct to an indented JSON schema.
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.ExpandedStruct = true
	schema := r.Reflect(t)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal schema", err)
	}

	return string(data), nil
}

// Schema returns the JSON schema of the whole configuration file.
func Schema() (string, error) {
	return ToJSONSchema(Config{})
}
