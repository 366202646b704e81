// Package accounts resolves account names to the kubeconfig file and
// context that select the target cluster.
package accounts

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/BurntSushi/toml"
	"k8s.io/client-go/tools/clientcmd"
)

var (
	// ErrAccountNotFound indicates that no credentials exist for an account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrContextNotFound indicates that a kubeconfig lacks the account's context.
	ErrContextNotFound = errors.New("context not found in kubeconfig")
)

// Credentials is the account context of an operation.
type Credentials struct {
	Name           string `toml:"-"`
	KubeconfigPath string `toml:"kubeconfig"`
	Context        string `toml:"context"`
	// Namespace is used when an operation does not name one.
	Namespace string `toml:"namespace"`
}

// Resolver maps account names to credentials.
type Resolver interface {
	Resolve(account string) (Credentials, error)
}

// Static is an in-memory Resolver.
type Static map[string]Credentials

// Resolve implements Resolver.
func (s Static) Resolve(account string) (Credentials, error) {
	creds, ok := s[account]
	if !ok {
		return Credentials{}, fmt.Errorf("%w: %q", ErrAccountNotFound, account)
	}
	creds.Name = account
	return creds, nil
}

// Names returns the configured account names in sorted order.
func (s Static) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

type fileLayout struct {
	Accounts map[string]Credentials `toml:"accounts"`
}

// LoadFile reads accounts from a TOML file:
//
//	[accounts.test-account]
//	kubeconfig = "/home/me/.kube/config"
//	context = "test-context"
//	namespace = "default"
func LoadFile(path string) (Static, error) {
	var layout fileLayout
	meta, err := toml.DecodeFile(path, &layout)
	if err != nil {
		return nil, fmt.Errorf("decode accounts file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("accounts file %s: unknown keys %v", path, undecoded)
	}

	out := make(Static, len(layout.Accounts))
	for name, creds := range layout.Accounts {
		creds.Name = name
		out[name] = creds
	}
	return out, nil
}

// Validate checks that the kubeconfig file can be loaded and contains the
// credentials' context. Credentials without a kubeconfig path rely on
// kubectl's own defaults and are not checked.
func Validate(creds Credentials) error {
	if creds.KubeconfigPath == "" {
		return nil
	}

	config, err := clientcmd.LoadFromFile(creds.KubeconfigPath)
	if err != nil {
		return fmt.Errorf("account %q: failed to load kubeconfig: %w", creds.Name, err)
	}

	if creds.Context != "" {
		if _, ok := config.Contexts[creds.Context]; !ok {
			return fmt.Errorf("account %q: %w: %s", creds.Name, ErrContextNotFound, creds.Context)
		}
	}

	return nil
}
