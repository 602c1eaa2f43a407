package replay

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const worldEventSchemaURL = "world_event.schema.json"

const worldEventSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["event"],
  "properties": {
    "tick": {"type": "integer", "minimum": 0},
    "event": {"type": "string", "minLength": 1},
    "x": {"type": "integer"},
    "y": {"type": "integer"},
    "z": {"type": "integer"},
    "blockId": {"type": "string"},
    "blockStateProperties": {"type": "string"}
  }
}`

func compileEventSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.CompileString(worldEventSchemaURL, worldEventSchema)
	if err != nil {
		return nil, fmt.Errorf("falha ao compilar schema de eventos: %w", err)
	}
	return s, nil
}
