package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/kubectl-jobs/internal/kubectl"
)

func newPatchCmd() *cobra.Command {
	var (
		strategy  string
		patch     string
		patchFile string
		record    bool
	)

	cmd := &cobra.Command{
		Use:   "patch KIND NAME",
		Short: "Patch a resource",
		Long: `Patch the resource KIND NAME with a YAML or JSON body given inline
(--patch) or read from a file (--patch-file).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			switch {
			case patch != "" && patchFile != "":
				return errors.New("--patch and --patch-file are mutually exclusive")
			case patch != "":
				raw = []byte(patch)
			case patchFile != "":
				data, err := readInput(cmd.InOrStdin(), patchFile)
				if err != nil {
					return err
				}
				raw = data
			default:
				return errors.New("one of --patch or --patch-file is required")
			}
			body, err := decodePatch(raw)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			out, err := a.dispatcher.Patch(cmd.Context(), globals.account, globals.namespace, manifestName(args),
				body, kubectl.PatchOptions{Strategy: kubectl.MergeStrategy(strategy), Record: record})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "type", string(kubectl.MergeStrategyStrategic), "Merge strategy: strategic, merge or json")
	cmd.Flags().StringVarP(&patch, "patch", "p", "", "Patch body (YAML or JSON)")
	cmd.Flags().StringVar(&patchFile, "patch-file", "", "File holding the patch body, or - for standard input")
	cmd.Flags().BoolVar(&record, "record", false, "Record the command in the resource annotation")
	return cmd
}

// manifestName joins KIND NAME arguments into "<Kind> <name>".
func manifestName(args []string) string {
	return args[0] + " " + args[1]
}
