package cli

import (
	"github.com/spf13/cobra"

	"github.com/specialistvlad/monox/internal/app"
)

// newInitCmd writes a configuration template. It does not load the
// workspace, so only --language and --no-color of the global flags apply.
func newInitCmd(g *globalFlags) *cobra.Command {
	var opts app.InitOptions
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = g.configPath
			opts.Language = g.language
			opts.Colored = !g.noColor
			return failed(app.Init(cmd.OutOrStdout(), opts))
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing configuration file")
	return cmd
}
