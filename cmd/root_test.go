package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdProperties(t *testing.T) {
	assert.Equal(t, "kubectl-jobs", rootCmd.Use)
	assert.Equal(t, "Run kubectl operations as supervised jobs", rootCmd.Short)
	assert.True(t, strings.Contains(rootCmd.Long, "kubectl"))
	assert.True(t, strings.Contains(rootCmd.Long, "Kubernetes"))
	assert.True(t, rootCmd.SilenceUsage)
}

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() {
		rootCmd.Version = originalVersion
	}()

	testVersion := "v1.2.3-test"
	SetVersion(testVersion)

	assert.Equal(t, testVersion, rootCmd.Version)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	var foundCommands []string
	for _, cmd := range rootCmd.Commands() {
		foundCommands = append(foundCommands, cmd.Name())
	}

	for _, name := range []string{"version", "self-update", "deploy", "patch", "delete", "get", "list", "top", "kinds", "accounts"} {
		assert.Contains(t, foundCommands, name)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"account", "accounts-file", "kubeconfig", "context", "namespace", "kubectl", "kinds-file", "discover-kinds", "debug", "progress"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, defaultAccount, flags.Lookup("account").DefValue)
	assert.Equal(t, "n", flags.Lookup("namespace").Shorthand)
}
