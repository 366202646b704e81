package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Output formats accepted by -o.
const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputName = "name"
)

// printObjects writes objects in format. A single object is printed bare,
// several are wrapped in a v1 List.
func printObjects(w io.Writer, format string, objs ...*unstructured.Unstructured) error {
	if format == outputName {
		for _, obj := range objs {
			if _, err := fmt.Fprintf(w, "%s %s\n", obj.GetKind(), obj.GetName()); err != nil {
				return err
			}
		}
		return nil
	}

	var v any
	if len(objs) == 1 {
		v = objs[0].Object
	} else {
		items := make([]any, 0, len(objs))
		for _, obj := range objs {
			items = append(items, obj.Object)
		}
		v = map[string]any{"apiVersion": "v1", "kind": "List", "items": items}
	}

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(v)
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// readInput reads path, or standard input when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// decodeManifests parses a multi-document YAML or JSON stream into
// manifests. Empty and null documents are skipped.
func decodeManifests(r io.Reader) ([]*unstructured.Unstructured, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("parse manifests: %w", err)
	}

	var out []*unstructured.Unstructured
	for i, doc := range file.Docs {
		if doc == nil || doc.Body == nil {
			continue
		}
		var v any
		if err := yaml.NodeToValue(doc.Body, &v); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if v == nil {
			continue
		}

		js, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(js); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// decodePatch converts a YAML or JSON patch body to JSON.
func decodePatch(data []byte) (json.RawMessage, error) {
	out, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	return out, nil
}
