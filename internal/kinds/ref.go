package kinds

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Ref identifies one resource: its kind, optional API group and name.
type Ref struct {
	Kind  string
	Group string
	Name  string
}

// ParseManifestName parses the "<Kind> <name>" form used by callers, for
// example "Deployment.apps my-app". The string is split on its first space
// only. The kind segment is split on its first dot into kind and group, so
// "ServiceMonitor.monitoring.coreos.com" keeps "monitoring.coreos.com" as
// the group.
func ParseManifestName(s string) (Ref, error) {
	kindPart, name, ok := strings.Cut(s, " ")
	if !ok || kindPart == "" || name == "" {
		return Ref{}, fmt.Errorf("%w: %q must have the form \"<Kind> <name>\"", ErrInvalidManifestName, s)
	}

	gk := schema.ParseGroupKind(kindPart)

	return Ref{Kind: gk.Kind, Group: gk.Group, Name: name}, nil
}

// QualifiedKind returns the kind joined with its group, e.g.
// "ServiceMonitor.monitoring.coreos.com", or the bare kind when the group is
// empty.
func (r Ref) QualifiedKind() string {
	return qualify(r.Kind, r.Group)
}

// String returns the "<Kind> <name>" form.
func (r Ref) String() string {
	return r.QualifiedKind() + " " + r.Name
}

func qualify(kind, group string) string {
	return schema.GroupKind{Group: group, Kind: kind}.String()
}
