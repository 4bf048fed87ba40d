package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// frameSchema validates observation frames pushed by an external vision
// process before they reach the core. The core drops bad samples on its
// own, but rejecting malformed JSON here gives the sender an immediate
// error instead of silent degradation.
const frameSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["ball", "goalie"],
  "properties": {
    "ball": {
      "type": "object",
      "required": ["pos", "t"],
      "properties": {
        "pos": {"$ref": "#/definitions/vec"},
        "vel": {"$ref": "#/definitions/vec"},
        "acc": {"$ref": "#/definitions/vec"},
        "jerk": {"$ref": "#/definitions/vec"},
        "t": {"type": "number"}
      }
    },
    "opponents": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["pos", "t"],
        "properties": {
          "pos": {"$ref": "#/definitions/vec"},
          "vel": {"$ref": "#/definitions/vec"},
          "t": {"type": "number"}
        }
      }
    },
    "goalie": {
      "type": "object",
      "required": ["pos", "t"],
      "properties": {
        "pos": {"$ref": "#/definitions/vec"},
        "t": {"type": "number"},
        "atIntercept": {"type": "boolean"}
      }
    }
  },
  "definitions": {
    "vec": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"}
      }
    }
  }
}`

var frameSchemaLoader = gojsonschema.NewStringLoader(frameSchema)

// validateFrame checks raw frame JSON against the schema and returns a
// single error listing every violation.
func validateFrame(data []byte) error {
	result, err := gojsonschema.Validate(frameSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("frame validation: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("invalid frame: %s", strings.Join(problems, "; "))
	}
	return nil
}
