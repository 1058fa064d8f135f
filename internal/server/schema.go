package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

const createTransactionSchema = `{
	"type": "object",
	"required": ["source", "target", "action"],
	"properties": {
		"action": {
			"type": "string",
			"enum": ["send", "swap", "buy", "sell", "deposit", "withdraw"]
		},
		"fiat": {
			"type": "string",
			"enum": ["USD", "EUR", "GBP"]
		},
		"source": {"$ref": "#/$defs/account"},
		"target": {"$ref": "#/$defs/account"}
	},
	"$defs": {
		"account": {
			"type": "object",
			"required": ["kind"],
			"properties": {
				"kind": {
					"type": "string",
					"enum": ["on_chain", "trading", "interest", "exchange", "bank"]
				},
				"chain": {"type": "string"},
				"currency": {"type": "string"},
				"address": {"type": "string"},
				"label": {"type": "string"}
			}
		}
	}
}`

// compileSchema compiles the create-transaction payload schema once at
// server construction.
func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(createTransactionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile JSON schema: %w", err)
	}
	return schema, nil
}

// validatePayload checks raw JSON against the schema and flattens
// validation errors to one message.
func validatePayload(schema *jsonschema.Schema, raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("invalid JSON payload")
	}

	res := schema.Validate(raw)
	if !res.IsValid() {
		var errStrs []string
		for _, e := range res.Errors {
			errStrs = append(errStrs, e.Error())
		}
		return fmt.Errorf("payload validation error: %s", strings.Join(errStrs, ", "))
	}
	return nil
}
