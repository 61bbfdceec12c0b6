package cli

import (
	"github.com/spf13/cobra"

	"github.com/specialistvlad/monox/internal/app"
)

func addEditFlags(cmd *cobra.Command, opts *app.EditOptions, format *string) {
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the planned changes without writing them")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().StringVarP(format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().BoolVarP(&opts.Detail, "detail", "d", false, "Show every usage of a conflicting dependency")
}

func newFixCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		opts   app.EditOptions
	)
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Align conflicting dependency versions across the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			opts.Format = f
			return g.withApp(cmd, func(a *app.App) error {
				return a.Fix(opts)
			})
		},
	}
	addEditFlags(cmd, &opts, &format)
	return cmd
}

func newUpdateCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		opts   app.UpdateOptions
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a dependency, or every outdated dependency, in all manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			opts.Format = f
			return g.withApp(cmd, func(a *app.App) error {
				return a.Update(opts)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Dependency, "package", "p", "", "Dependency to update")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Update every outdated dependency")
	cmd.Flags().StringVar(&opts.Version, "version", "", "Target version (default: latest from the registry)")
	addEditFlags(cmd, &opts.EditOptions, &format)
	cmd.MarkFlagsOneRequired("package", "all")
	cmd.MarkFlagsMutuallyExclusive("package", "all")
	cmd.MarkFlagsMutuallyExclusive("version", "all")
	return cmd
}
