package kinds

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// CRDSource converts CustomResourceDefinition manifests, as returned by
// "kubectl get customResourceDefinition -o json", into registry entries.
type CRDSource []*unstructured.Unstructured

// Entries returns one entry per definition: spec.names.kind qualified with
// spec.group, namespaced when spec.scope is "Namespaced".
func (s CRDSource) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(s))
	for _, crd := range s {
		if crd == nil {
			continue
		}

		kind, _, err := unstructured.NestedString(crd.Object, "spec", "names", "kind")
		if err != nil || kind == "" {
			return nil, fmt.Errorf("custom resource definition %q has no spec.names.kind", crd.GetName())
		}
		group, _, err := unstructured.NestedString(crd.Object, "spec", "group")
		if err != nil {
			return nil, fmt.Errorf("custom resource definition %q: %w", crd.GetName(), err)
		}
		scope, _, err := unstructured.NestedString(crd.Object, "spec", "scope")
		if err != nil {
			return nil, fmt.Errorf("custom resource definition %q: %w", crd.GetName(), err)
		}

		entries = append(entries, Entry{
			Kind:       qualify(kind, group),
			Namespaced: scope == "Namespaced",
		})
	}

	return dedupe(entries), nil
}
