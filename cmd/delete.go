package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/kubectl-jobs/internal/kubectl"
)

func newDeleteCmd() *cobra.Command {
	var (
		gracePeriod int64
		cascade     string
	)

	cmd := &cobra.Command{
		Use:   "delete KIND NAME",
		Short: "Delete a resource",
		Long:  `Delete the resource KIND NAME. Deleting a missing resource succeeds.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := kubectl.DeleteOptions{Cascade: kubectl.Cascade(cascade)}
			if cmd.Flags().Changed("grace-period") {
				opts.GracePeriod = &gracePeriod
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			out, err := a.dispatcher.Delete(cmd.Context(), globals.account, globals.namespace, manifestName(args), opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&gracePeriod, "grace-period", 0, "Seconds given to the resource to terminate gracefully")
	cmd.Flags().StringVar(&cascade, "cascade", "", "Dependent deletion mode: background, foreground or orphan")
	return cmd
}
