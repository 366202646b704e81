package instrumentation

import "strings"

// Cardinality management helpers for metrics.
//
// Kube context names are user-controlled and unbounded, so metrics never
// carry them directly. They are reduced to a small set of ContextType values.

// ContextType represents a classification of kube context names for metrics.
type ContextType string

// Context type classifications for metrics cardinality control.
const (
	// ContextTypeProduction represents production contexts.
	ContextTypeProduction ContextType = "production"

	// ContextTypeStaging represents staging/pre-production contexts.
	ContextTypeStaging ContextType = "staging"

	// ContextTypeDevelopment represents development, demo and test contexts.
	ContextTypeDevelopment ContextType = "development"

	// ContextTypeCICD represents CI/CD contexts (e.g., cicdprod, cicddev).
	ContextTypeCICD ContextType = "cicd"

	// ContextTypeLocal represents local clusters (kind, minikube, docker-desktop).
	ContextTypeLocal ContextType = "local"

	// ContextTypeDefault represents the kubeconfig's current context (empty name).
	ContextTypeDefault ContextType = "default"

	// ContextTypeOther represents contexts that don't match any known pattern.
	ContextTypeOther ContextType = "other"
)

// ClassifyContextName maps a kube context name to a ContextType.
//
//	| Pattern                                  | Type        |
//	|------------------------------------------|-------------|
//	| Empty string                             | default     |
//	| Contains: cicd                           | cicd        |
//	| Prefix: kind-, minikube, docker-desktop  | local       |
//	| Prefix: prod-, prod_; -prod-, -prod      | production  |
//	| Contains: production                     | production  |
//	| Prefix: staging, stg-; -stg-, -stg       | staging     |
//	| Prefix: dev-, dev_, demo, test-, test_   | development |
//	| Contains: development, -dev-, -test-     | development |
//	| Suffix: -dev, -test                      | development |
//	| Everything else                          | other       |
//
// Examples:
//
//	ClassifyContextName("")                  // "default"
//	ClassifyContextName("prod-eu-west")      // "production"
//	ClassifyContextName("kind-local")        // "local"
//	ClassifyContextName("test-context")      // "development"
//	ClassifyContextName("cicdprod")          // "cicd"
//	ClassifyContextName("my-cluster")        // "other"
func ClassifyContextName(name string) string {
	if name == "" {
		return string(ContextTypeDefault)
	}

	nameLower := strings.ToLower(name)

	// CI/CD patterns (check first as they often contain "prod" or "dev" in the name)
	if strings.Contains(nameLower, "cicd") {
		return string(ContextTypeCICD)
	}

	if strings.HasPrefix(nameLower, "kind-") ||
		strings.HasPrefix(nameLower, "minikube") ||
		strings.HasPrefix(nameLower, "docker-desktop") {
		return string(ContextTypeLocal)
	}

	if strings.HasPrefix(nameLower, "prod-") ||
		strings.HasPrefix(nameLower, "prod_") ||
		strings.Contains(nameLower, "production") ||
		strings.Contains(nameLower, "-prod-") ||
		strings.HasSuffix(nameLower, "-prod") {
		return string(ContextTypeProduction)
	}

	if strings.HasPrefix(nameLower, "stg-") ||
		strings.Contains(nameLower, "staging") ||
		strings.Contains(nameLower, "-stg-") ||
		strings.HasSuffix(nameLower, "-stg") {
		return string(ContextTypeStaging)
	}

	if strings.HasPrefix(nameLower, "dev-") ||
		strings.HasPrefix(nameLower, "dev_") ||
		strings.Contains(nameLower, "development") ||
		strings.Contains(nameLower, "-dev-") ||
		strings.HasSuffix(nameLower, "-dev") ||
		strings.HasPrefix(nameLower, "demo") ||
		strings.HasPrefix(nameLower, "test-") ||
		strings.HasPrefix(nameLower, "test_") ||
		strings.Contains(nameLower, "-test-") ||
		strings.HasSuffix(nameLower, "-test") {
		return string(ContextTypeDevelopment)
	}

	return string(ContextTypeOther)
}
