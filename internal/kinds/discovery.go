package kinds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/tools/clientcmd"
)

// DiscoverySource lists the cluster's API resources through the discovery
// API and registers every kind that is not built in. A kind served in
// several versions is registered once.
type DiscoverySource struct {
	client discovery.DiscoveryInterface
	logger *slog.Logger
}

// NewDiscoverySource creates a DiscoverySource backed by client.
func NewDiscoverySource(client discovery.DiscoveryInterface, logger *slog.Logger) *DiscoverySource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoverySource{
		client: client,
		logger: logger,
	}
}

// NewDiscoverySourceForContext builds a discovery client from a kubeconfig
// file and context. Empty values fall back to the default loading rules.
func NewDiscoverySourceForContext(kubeconfigPath, kubeContext string, logger *slog.Logger) (*DiscoverySource, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		rules.ExplicitPath = kubeconfigPath
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	client, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	return NewDiscoverySource(client, logger), nil
}

// Kinds implements Source.
func (s *DiscoverySource) Kinds(ctx context.Context) ([]Entry, error) {
	_, apiResourceLists, err := s.client.ServerGroupsAndResources()
	if err != nil {
		// Unavailable aggregated APIs only hide their own groups.
		if !discovery.IsGroupDiscoveryFailedError(err) || len(apiResourceLists) == 0 {
			return nil, fmt.Errorf("failed to get API resources: %w", err)
		}
		s.logger.WarnContext(ctx, "partial API discovery", slog.String("error", err.Error()))
	}

	var entries []Entry
	for _, apiResourceList := range apiResourceLists {
		gv, err := schema.ParseGroupVersion(apiResourceList.GroupVersion)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to parse group version",
				slog.String("groupVersion", apiResourceList.GroupVersion),
				slog.String("error", err.Error()))
			continue
		}

		for _, apiResource := range apiResourceList.APIResources {
			// Skip sub-resources (they contain '/')
			if strings.Contains(apiResource.Name, "/") {
				continue
			}
			if _, ok := lookupBuiltin(apiResource.Kind, gv.Group, true); ok {
				continue
			}

			entries = append(entries, Entry{
				Kind:       qualify(apiResource.Kind, gv.Group),
				Namespaced: apiResource.Namespaced,
			})
		}
	}

	return dedupe(entries), nil
}
