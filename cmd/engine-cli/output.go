// cmd/engine-cli/output.go
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type renderer func(w io.Writer, v interface{}) error

func newRenderer(format string) (renderer, error) {
	switch format {
	case "json", "":
		return renderJSON, nil
	case "yaml", "yml":
		return renderYAML, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want json or yaml)", format)
	}
}

func renderJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderYAML goes through JSON first so keys keep their json tag names.
func renderYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (f *globalFlags) print(w io.Writer, v interface{}) error {
	render, err := newRenderer(f.output)
	if err != nil {
		return err
	}
	return render(w, v)
}
