package app

import (
	"io"

	"github.com/specialistvlad/monox/internal/config"
	"github.com/specialistvlad/monox/internal/render"
)

// DefaultConfigPath is where init writes when no path is given.
const DefaultConfigPath = "monox.hcl"

// InitOptions configures Init.
type InitOptions struct {
	Path     string
	Force    bool
	Language string
	Colored  bool
}

// Init writes the default configuration file. An existing file is kept
// unless Force is set. It needs no workspace, so it does not go through
// NewApp.
func Init(out io.Writer, opts InitOptions) error {
	path := opts.Path
	if path == "" {
		path = DefaultConfigPath
	}
	r := render.New(out, render.Options{Colored: opts.Colored, Language: opts.Language})

	written, err := config.WriteTemplate(path, opts.Force)
	if err != nil {
		return err
	}
	if !written {
		r.Warning("Config file already exists: %s", path)
		r.Message("Use --force to overwrite existing config file")
		return nil
	}
	r.Success("Config file created: %s", path)
	r.Message("You can now edit the config file to suit your project needs")
	return nil
}
