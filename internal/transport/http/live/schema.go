package livehttp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// settingsSchema is the wire contract for PUT /api/settings. Every field is
// optional so partial updates work; types and ranges are enforced here,
// cross-field rules by the struct validation after merging.
const settingsSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "exchange":         {"type": "string", "enum": ["binance", "okx"]},
    "symbols":          {"type": "string", "minLength": 1},
    "timeframe":        {"type": "string", "minLength": 1},
    "riskPerTrade":     {"type": "number", "exclusiveMinimum": 0, "maximum": 0.2},
    "dailyMaxDD":       {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
    "maxConcurrentPos": {"type": "integer", "minimum": 1},
    "hhvLen":           {"type": "integer", "minimum": 2},
    "atrLen":           {"type": "integer", "minimum": 1},
    "volZLookback":     {"type": "integer", "minimum": 2},
    "atrMultSL":        {"type": "number", "exclusiveMinimum": 0},
    "atrMultTrail":     {"type": "number", "exclusiveMinimum": 0},
    "volZMin":          {"type": "number", "minimum": 0},
    "dryRun":           {"type": "boolean"}
  }
}`

var compiledSettingsSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("settings.json", strings.NewReader(settingsSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("settings.json")
}

func validateSettingsPayload(body []byte) error {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := compiledSettingsSchema.Validate(payload); err != nil {
		return fmt.Errorf("invalid settings payload: %w", err)
	}
	return nil
}
