package kinds

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// builtinKind describes a kind kubectl knows without any registration.
type builtinKind struct {
	// Kind is the lower-cased kind used as the command-line token.
	Kind       string
	Group      string
	Namespaced bool
}

// builtinKinds is read-only after package initialization.
var builtinKinds = initBuiltinKinds()

// lookupBuiltin finds the built-in kind spelled kind. The group must match
// the built-in's group; an empty group matches any group unless strictGroup
// is set, as for discovery where the empty group is the core API group.
func lookupBuiltin(kind, group string, strictGroup bool) (builtinKind, bool) {
	// A Caser is stateful, so each lookup gets its own.
	b, ok := builtinKinds[cases.Lower(language.Und).String(kind)]
	if !ok {
		return builtinKind{}, false
	}
	if group != b.Group && (strictGroup || group != "") {
		return builtinKind{}, false
	}
	return b, true
}

// initBuiltinKinds returns the built-in kinds keyed by every lower-cased
// spelling kubectl accepts for them: kind, plural and short name.
func initBuiltinKinds() map[string]builtinKind {
	table := map[string]builtinKind{}
	add := func(kind, group string, namespaced bool, aliases ...string) {
		k := builtinKind{Kind: kind, Group: group, Namespaced: namespaced}
		table[kind] = k
		for _, alias := range aliases {
			table[alias] = k
		}
	}

	// Core/v1
	add("pod", "", true, "pods", "po")
	add("service", "", true, "services", "svc")
	add("configmap", "", true, "configmaps", "cm")
	add("secret", "", true, "secrets")
	add("serviceaccount", "", true, "serviceaccounts", "sa")
	add("persistentvolumeclaim", "", true, "persistentvolumeclaims", "pvc")
	add("endpoints", "", true, "ep")
	add("event", "", true, "events", "ev")
	add("limitrange", "", true, "limitranges", "limits")
	add("resourcequota", "", true, "resourcequotas", "quota")
	add("replicationcontroller", "", true, "replicationcontrollers", "rc")
	add("node", "", false, "nodes", "no")
	add("namespace", "", false, "namespaces", "ns")
	add("persistentvolume", "", false, "persistentvolumes", "pv")

	// apps/v1
	add("deployment", "apps", true, "deployments", "deploy")
	add("replicaset", "apps", true, "replicasets", "rs")
	add("daemonset", "apps", true, "daemonsets", "ds")
	add("statefulset", "apps", true, "statefulsets", "sts")
	add("controllerrevision", "apps", true, "controllerrevisions")

	// batch/v1
	add("job", "batch", true, "jobs")
	add("cronjob", "batch", true, "cronjobs", "cj")

	// autoscaling and policy
	add("horizontalpodautoscaler", "autoscaling", true, "horizontalpodautoscalers", "hpa")
	add("poddisruptionbudget", "policy", true, "poddisruptionbudgets", "pdb")

	// networking.k8s.io/v1
	add("ingress", "networking.k8s.io", true, "ingresses", "ing")
	add("networkpolicy", "networking.k8s.io", true, "networkpolicies", "netpol")
	add("ingressclass", "networking.k8s.io", false, "ingressclasses")

	// rbac.authorization.k8s.io/v1
	add("role", "rbac.authorization.k8s.io", true, "roles")
	add("rolebinding", "rbac.authorization.k8s.io", true, "rolebindings")
	add("clusterrole", "rbac.authorization.k8s.io", false, "clusterroles")
	add("clusterrolebinding", "rbac.authorization.k8s.io", false, "clusterrolebindings")

	// storage.k8s.io/v1
	add("storageclass", "storage.k8s.io", false, "storageclasses", "sc")

	// apiextensions.k8s.io/v1
	add("customresourcedefinition", "apiextensions.k8s.io", false, "customresourcedefinitions", "crd", "crds")

	return table
}
