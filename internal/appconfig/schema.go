// internal/appconfig/schema.go
package appconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema describes the shape a config file must satisfy before the
// application trusts it. Validation happens here, at the boundary, so the
// rest of the code can assume a well-formed council roster.
var configSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"backendUrl": map[string]any{"type": "string"},
		"apiKeyEnv":  map[string]any{"type": "string"},
		"councilModels": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string", "minLength": 1},
			"minItems": 2,
		},
		"chairmanModel": map[string]any{"type": "string", "minLength": 1},
		"timeout":       map[string]any{"type": "integer", "minimum": 0},
		"debug":         map[string]any{"type": "boolean"},
		"logFile":       map[string]any{"type": "string"},
	},
	"required": []any{"councilModels", "chairmanModel"},
}

// Validate checks the configuration against the config schema and a few
// semantic rules the schema cannot express.
func (c Config) Validate() error {
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewGoLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("config does not match schema: %s", strings.Join(problems, "; "))
	}

	for _, m := range c.CouncilModels {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("councilModels contains a blank entry")
		}
	}
	if strings.TrimSpace(c.ChairmanModel) == "" {
		return fmt.Errorf("chairmanModel must not be blank")
	}
	return nil
}
