package cli

import (
	"github.com/spf13/cobra"

	"github.com/specialistvlad/monox/internal/app"
)

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		opts   app.AnalyzeOptions
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show the packages, build stages and dependency cycles of the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			opts.Format = f
			return g.withApp(cmd, func(a *app.App) error {
				return a.Analyze(opts)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().BoolVarP(&opts.Detail, "detail", "d", false, "Show the workspace dependencies of each package")
	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "Analyze only this package and what it depends on")
	return cmd
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		opts   app.CheckOptions
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run workspace health checks",
		Long:  "Run workspace health checks. Without a check flag only circular dependencies are checked. Exits with 1 when a check finds issues.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			opts.Format = f
			return g.withApp(cmd, func(a *app.App) error {
				return a.Check(opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Circular, "circular", false, "Check for circular dependencies")
	cmd.Flags().BoolVar(&opts.Versions, "versions", false, "Check for version conflicts")
	cmd.Flags().BoolVar(&opts.Outdated, "outdated", false, "Check for outdated dependencies")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().BoolVarP(&opts.Detail, "detail", "d", false, "Show every usage of a conflicting dependency")
	return cmd
}
