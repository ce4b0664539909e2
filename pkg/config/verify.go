package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var embeddedSchema string

const schemaURL = "schema.json"

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	schemaDoc, err := validator.UnmarshalJSON(strings.NewReader(embeddedSchema))
	if err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	compiler := validator.NewCompiler()
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return fmt.Errorf("add embedded schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compile embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	configDoc, err := validator.UnmarshalJSON(bytes.NewReader(configData))
	if err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := schema.Validate(configDoc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
