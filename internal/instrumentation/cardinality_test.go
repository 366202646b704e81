package instrumentation

import "testing"

func TestClassifyContextName(t *testing.T) {
	tests := []struct {
		name string
		want ContextType
	}{
		{"", ContextTypeDefault},
		{"cicdprod", ContextTypeCICD},
		{"cicd-dev", ContextTypeCICD},
		{"kind-local", ContextTypeLocal},
		{"minikube", ContextTypeLocal},
		{"docker-desktop", ContextTypeLocal},
		{"prod-eu-west", ContextTypeProduction},
		{"PROD_us", ContextTypeProduction},
		{"my-production-env", ContextTypeProduction},
		{"eu-prod", ContextTypeProduction},
		{"staging-1", ContextTypeStaging},
		{"stg-wc-01", ContextTypeStaging},
		{"eu-stg", ContextTypeStaging},
		{"dev-cluster", ContextTypeDevelopment},
		{"demo-tech", ContextTypeDevelopment},
		{"test-context", ContextTypeDevelopment},
		{"team-test", ContextTypeDevelopment},
		{"my-cluster", ContextTypeOther},
		{"us-east-1", ContextTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyContextName(tt.name); got != string(tt.want) {
				t.Errorf("ClassifyContextName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
