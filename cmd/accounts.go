package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/giantswarm/kubectl-jobs/internal/accounts"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect the configured accounts",
	}
	cmd.AddCommand(newAccountsListCmd(), newAccountsCheckCmd())
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the configured accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := loadAccounts()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tKUBECONFIG\tCONTEXT\tNAMESPACE")
			for _, name := range static.Names() {
				creds, _ := static.Resolve(name)
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name,
					orNone(creds.KubeconfigPath), orNone(creds.Context), orNone(creds.Namespace))
			}
			return tw.Flush()
		},
	}
}

func newAccountsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [ACCOUNT...]",
		Short: "Check that account kubeconfigs load and contain their context",
		Long: `Check that the kubeconfig of every named account, or of all accounts
when none is named, loads and contains the account's context.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := loadAccounts()
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = static.Names()
			}

			var errs []error
			for _, name := range names {
				creds, err := static.Resolve(name)
				if err == nil {
					err = accounts.Validate(creds)
				}
				if err != nil {
					errs = append(errs, err)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", name, err)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
			}
			return errors.Join(errs...)
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
