package kubectl

import (
	"encoding/json"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utiljson "k8s.io/apimachinery/pkg/util/json"
)

// ManifestListConsumer decodes a `kubectl get -o json` list while kubectl is
// still writing it. Each element of "items" is decoded as one manifest; every
// other top-level field is skipped. A list without items yields an empty,
// non-nil slice.
func ManifestListConsumer(r io.Reader) ([]*unstructured.Unstructured, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	manifests := []*unstructured.Unstructured{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read list field: %w", err)
		}
		key, _ := tok.(string)
		if key != "items" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("skip list field %q: %w", key, err)
			}
			continue
		}

		if err := expectDelim(dec, '['); err != nil {
			return nil, err
		}
		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("read item %d: %w", len(manifests), err)
			}
			obj := map[string]any{}
			if err := utiljson.Unmarshal(raw, &obj); err != nil {
				return nil, fmt.Errorf("decode item %d: %w", len(manifests), err)
			}
			manifests = append(manifests, &unstructured.Unstructured{Object: obj})
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return manifests, nil
}

// ManifestConsumer decodes the single object printed by `kubectl get -o json`.
func ManifestConsumer(r io.Reader) (*unstructured.Unstructured, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return obj, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("expected %q: %w", want, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
