package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
	yamlIndent   = 2

	errorEncodeJSONFormat = "encoding json: %w"
	errorEncodeYAMLFormat = "encoding yaml: %w"
)

// writeJSON encodes value as indented JSON followed by a newline.
func writeJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent(indentPrefix, indentSpacer)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return fmt.Errorf(errorEncodeJSONFormat, encodeError)
	}
	return nil
}

// writeYAML encodes value as a single YAML document.
func writeYAML(writer io.Writer, value any) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndent)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return fmt.Errorf(errorEncodeYAMLFormat, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(errorEncodeYAMLFormat, closeError)
	}
	return nil
}
