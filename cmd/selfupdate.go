package cmd

import (
	"errors"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository whose releases self-update installs.
const githubRepoSlug = "giantswarm/kubectl-jobs"

// newSelfUpdateCmd creates the Cobra command that replaces the running binary
// with the latest release.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update kubectl-jobs to the latest version",
		Long: `Check the GitHub releases of kubectl-jobs and replace the running
binary with the latest version when it is newer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := rootCmd.Version
			if current == "" || current == "dev" {
				return errors.New("cannot self-update a development version")
			}

			ctx := cmd.Context()
			latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
			if err != nil {
				return fmt.Errorf("error detecting latest version: %w", err)
			}
			if !found {
				return fmt.Errorf("no release found for %s", githubRepoSlug)
			}

			out := cmd.OutOrStdout()
			if latest.LessOrEqual(current) {
				_, _ = fmt.Fprintf(out, "Current version %s is the latest\n", current)
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("could not locate executable path: %w", err)
			}
			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("error occurred while updating binary: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
			return nil
		},
	}
}
