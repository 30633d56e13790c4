package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// renderer prints a reconcile result or a single normalized applicant
type renderer func(any) ([]byte, error)

func rendererFor(format string) (renderer, error) {
	switch format {
	case "json":
		return renderJSON, nil
	case "yaml", "yml":
		return renderYAML, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

func renderJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// renderYAML goes through JSON so keys keep their camelCase API names
func renderYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}
