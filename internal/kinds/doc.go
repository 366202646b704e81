// Package kinds resolves Kubernetes resource kinds to the token kubectl
// expects and to their namespace scoping.
//
// Well-known kinds (Deployment, Service, ConfigMap, ...) come from a fixed
// built-in table and never hit the Registry. Every other kind must be
// registered under its exact, case-sensitive name including the API group,
// e.g. "ServiceMonitor.monitoring.coreos.com". Resolving an unknown kind
// fails with ErrKindNotRegistered before any command is built.
//
// The Registry is read-mostly. Lookups are lock-free and always see a
// complete table; Replace swaps in a new table atomically. Sources feed the
// registry from cluster discovery, from CustomResourceDefinition manifests
// or from a YAML file, and a Refresher or WatchFile keeps it current.
package kinds
