package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Environment variables consulted when the matching flag is not set.
const (
	envAccountsFile = "KUBECTL_JOBS_ACCOUNTS_FILE"
	envKubectl      = "KUBECTL_JOBS_KUBECTL"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	account      string
	accountsFile string
	kubeconfig   string
	kubeContext  string
	namespace    string
	kubectl      string
	kindsFile    string
	discover     bool
	debug        bool
	progress     bool
}

var globals globalOptions

// rootCmd represents the base command for the kubectl-jobs application.
var rootCmd = &cobra.Command{
	Use:   "kubectl-jobs",
	Short: "Run kubectl operations as supervised jobs",
	Long: `kubectl-jobs runs deploy, patch, delete, get, list and top operations
against Kubernetes clusters by invoking kubectl as a child process.

Each operation is resolved against an account (a kubeconfig file and
context), checked against the registry of known resource kinds, executed
and interpreted into a typed result or a typed error.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyEnvDefaults(cmd)
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// It cancels the running operation on SIGINT or SIGTERM.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "kubectl-jobs version %s\n" .Version}}`)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

// applyEnvDefaults fills flags the user did not set from the environment.
func applyEnvDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("accounts-file") {
		if v := os.Getenv(envAccountsFile); v != "" {
			globals.accountsFile = v
		}
	}
	if !flags.Changed("kubectl") {
		if v := os.Getenv(envKubectl); v != "" {
			globals.kubectl = v
		}
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.account, "account", defaultAccount, "Account to run the operation as")
	flags.StringVar(&globals.accountsFile, "accounts-file", "", "TOML file mapping accounts to kubeconfig and context (can also be set via KUBECTL_JOBS_ACCOUNTS_FILE env var)")
	flags.StringVar(&globals.kubeconfig, "kubeconfig", "", "Kubeconfig of the ad-hoc account used without --accounts-file")
	flags.StringVar(&globals.kubeContext, "context", "", "Kubeconfig context of the ad-hoc account used without --accounts-file")
	flags.StringVarP(&globals.namespace, "namespace", "n", "", "Namespace of namespaced resources (default: the account's namespace)")
	flags.StringVar(&globals.kubectl, "kubectl", "", "kubectl command line, e.g. \"kubectl --v=4\" (can also be set via KUBECTL_JOBS_KUBECTL env var)")
	flags.StringVar(&globals.kindsFile, "kinds-file", "", "YAML file listing custom resource kinds")
	flags.BoolVar(&globals.discover, "discover-kinds", false, "Register the custom resource kinds served by the cluster")
	flags.BoolVar(&globals.debug, "debug", false, "Enable debug logging (default: false)")
	flags.BoolVar(&globals.progress, "progress", false, "Print job phase transitions to stderr")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newPatchCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newKindsCmd())
	rootCmd.AddCommand(newAccountsCmd())
}
