package cli

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:           "tracerun [trace-file]",
		Short:         "Compile the SMMU simulator and run it against a trace file",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, args)
		},
	}
	cmd.Flags().BoolVarP(&opts.keep, "keep", "k", false, "keep the compiled binary after the run")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "bound each child process (0 means no limit)")

	cmd.AddCommand(
		newInitCommand(),
		newDoctorCommand(),
		newVersionCommand(),
	)

	return cmd
}
