package cmd

import (
	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get KIND NAME",
		Short: "Retrieve a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			obj, err := a.dispatcher.Get(cmd.Context(), globals.account, globals.namespace, manifestName(args))
			if err != nil {
				return err
			}
			return printObjects(cmd.OutOrStdout(), output, obj)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "Output format: json or yaml")
	return cmd
}

func newListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list KIND",
		Short: "List every resource of a kind",
		Long: `List every resource of KIND, which may carry its API group as in
ServiceMonitor.monitoring.coreos.com.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			objs, err := a.dispatcher.List(cmd.Context(), globals.account, globals.namespace, args[0])
			if err != nil {
				return err
			}
			return printObjects(cmd.OutOrStdout(), output, objs...)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputName, "Output format: json, yaml or name")
	return cmd
}
