package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/specialistvlad/monox/internal/app"
	"github.com/specialistvlad/monox/internal/config"
	"github.com/specialistvlad/monox/internal/render"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	verbose           bool
	language          string
	workspaceRoot     string
	maxConcurrency    int
	timeout           int
	retry             int
	continueOnFailure bool
	noColor           bool
	noProgress        bool
	configPath        string
	logFormat         string
	healthcheckPort   int
	eventsURL         string

	appOptions []app.Option
}

// NewRootCmd builds the monox command tree. opts are handed to every App the
// subcommands create.
func NewRootCmd(version string, opts ...app.Option) *cobra.Command {
	g := &globalFlags{appOptions: opts}

	cmd := &cobra.Command{
		Use:           "monox",
		Short:         "MonoX - dependency-aware task runner for JavaScript monorepos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usage(err)
	})

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Show verbose output and debug logs")
	pf.StringVarP(&g.language, "language", "l", "", fmt.Sprintf("Output language %v", config.Languages))
	pf.StringVarP(&g.workspaceRoot, "workspace-root", "C", "", "Workspace root directory")
	pf.IntVarP(&g.maxConcurrency, "max-concurrency", "j", 0, "Maximum number of tasks running at once")
	pf.IntVar(&g.timeout, "timeout", 0, "Per-task timeout in seconds (0 disables it)")
	pf.IntVar(&g.retry, "retry", 0, "Retries for a task that exits with an error")
	pf.BoolVar(&g.continueOnFailure, "continue-on-failure", false, "Keep running later stages after a failure")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&g.noProgress, "no-progress", false, "Disable progress output")
	pf.StringVar(&g.configPath, "config", "", "Path to a monox.hcl or monox.yaml file")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'")
	pf.IntVar(&g.healthcheckPort, "healthcheck-port", 0, "Port for the health check and metrics server. 0 is disabled")
	pf.StringVar(&g.eventsURL, "events-url", "", "Socket.IO endpoint receiving task lifecycle events")

	cmd.AddCommand(newAnalyzeCmd(g))
	cmd.AddCommand(newCheckCmd(g))
	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newExecCmd(g))
	cmd.AddCommand(newFixCmd(g))
	cmd.AddCommand(newUpdateCmd(g))
	cmd.AddCommand(newInitCmd(g))

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}
	return cmd
}

// overrides turns the flags the user actually set into runtime overrides, so
// unset flags never mask the config file or the environment.
func (g *globalFlags) overrides(fs *pflag.FlagSet) config.RuntimeOverrides {
	var o config.RuntimeOverrides
	if fs.Changed("verbose") {
		o.Verbose = &g.verbose
	}
	if fs.Changed("language") {
		o.Language = &g.language
	}
	if fs.Changed("workspace-root") {
		o.WorkspaceRoot = &g.workspaceRoot
	}
	if fs.Changed("max-concurrency") {
		o.MaxConcurrency = &g.maxConcurrency
	}
	if fs.Changed("timeout") {
		o.TaskTimeout = &g.timeout
	}
	if fs.Changed("retry") {
		o.RetryCount = &g.retry
	}
	if fs.Changed("continue-on-failure") {
		o.ContinueOnFailure = &g.continueOnFailure
	}
	if fs.Changed("no-color") {
		colored := !g.noColor
		o.Colored = &colored
	}
	if fs.Changed("no-progress") {
		progress := !g.noProgress
		o.ShowProgress = &progress
	}
	return o
}

// newApp builds the App for one subcommand invocation.
func (g *globalFlags) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPath:      g.configPath,
		Environ:         os.Environ(),
		Overrides:       g.overrides(cmd.Flags()),
		LogFormat:       g.logFormat,
		HealthcheckPort: g.healthcheckPort,
		EventsURL:       g.eventsURL,
	})
	if err != nil {
		return nil, usage(err)
	}
	return app.NewApp(cmd.Context(), app.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	}, cfg, g.appOptions...)
}

// withApp runs fn against a fresh App and closes it afterwards.
func (g *globalFlags) withApp(cmd *cobra.Command, fn func(*app.App) error) error {
	a, err := g.newApp(cmd)
	if err != nil {
		return failed(err)
	}
	defer a.Close()
	return failed(fn(a))
}

func parseFormat(s string) (render.Format, error) {
	f, err := render.ParseFormat(s)
	if err != nil {
		return "", usage(err)
	}
	return f, nil
}
