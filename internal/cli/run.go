package cli

import (
	"github.com/spf13/cobra"

	"github.com/specialistvlad/monox/internal/app"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		opts   app.RunOptions
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a package script stage by stage",
		Long:  "Run a package script in one package after everything it depends on, or in every package of the workspace.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			opts.Format = f
			return g.withApp(cmd, func(a *app.App) error {
				_, err := a.Run(opts)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Script, "command", "c", "", "Script to run")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "Run for this package and its dependencies")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Run for every package")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Summary format: table, json or yaml")
	_ = cmd.MarkFlagRequired("command")
	cmd.MarkFlagsOneRequired("package", "all")
	cmd.MarkFlagsMutuallyExclusive("package", "all")
	return cmd
}

func newExecCmd(g *globalFlags) *cobra.Command {
	var format, task string
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute a task defined in the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			return g.withApp(cmd, func(a *app.App) error {
				_, err := a.Exec(task, f)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&task, "task", "t", "", "Name of the task")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Summary format: table, json or yaml")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}
