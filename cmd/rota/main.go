// Command rota prints and exports the 2026 shift rota.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "rota",
		Short: "Shift rota for 2026",
		Long: `rota computes the rotating 8-day shift schedule for the 2026 roster.

Each worker works six days on one shift, then has an off day and a rest day,
and moves to the next shift in the rotation (morning, night, evening).
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init()
		},
	}

	root.PersistentFlags().StringVar(&opts.palettePath, "palette", os.Getenv("PALETTE_PATH"), "YAML file overriding shift labels and colours")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newShowCmd(opts),
		newAssignCmd(opts),
		newExportCmd(opts),
		newSmokeCmd(),
		newCoverageCmd(opts),
	)
	return root
}
