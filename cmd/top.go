package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
)

func newTopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Show CPU and memory usage of pod containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			pods, err := a.dispatcher.Top(cmd.Context(), globals.account, globals.namespace)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, "POD\tCONTAINER\tCPU\tMEMORY")
			for _, pod := range pods {
				for _, c := range pod.Containers {
					cpu := c.Usage[corev1.ResourceCPU]
					mem := c.Usage[corev1.ResourceMemory]
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", pod.Pod, c.Name, cpu.String(), mem.String())
				}
			}
			return tw.Flush()
		},
	}
}
