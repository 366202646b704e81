package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeployCmd() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Apply manifests from a file",
		Long: `Apply every manifest of a YAML or JSON file with kubectl apply.
Documents are applied in file order; the first failure stops the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filename == "" {
				return errors.New("--filename is required")
			}
			data, err := readInput(cmd.InOrStdin(), filename)
			if err != nil {
				return err
			}
			manifests, err := decodeManifests(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("parse %s: %w", filename, err)
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			for _, manifest := range manifests {
				out, err := a.dispatcher.Deploy(cmd.Context(), globals.account, manifest)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "Manifest file, or - for standard input")
	return cmd
}
