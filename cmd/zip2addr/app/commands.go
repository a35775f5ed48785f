package app

import (
	"github.com/spf13/cobra"

	"github.com/zip2addr/zip2addr/cmd/zip2addr/cmd/convert"
	"github.com/zip2addr/zip2addr/cmd/zip2addr/cmd/extract"
	"github.com/zip2addr/zip2addr/cmd/zip2addr/cmd/initdb"
	"github.com/zip2addr/zip2addr/cmd/zip2addr/cmd/load"
	"github.com/zip2addr/zip2addr/cmd/zip2addr/cmd/search"
	"github.com/zip2addr/zip2addr/cmd/zip2addr/cmd/serve"
	"github.com/zip2addr/zip2addr/cmd/zip2addr/cmd/version"
)

// NewInitDBCommand creates the initdb command with app dependencies.
func (a *App) NewInitDBCommand() *cobra.Command {
	return initdb.NewCommand(a)
}

// NewSearchCommand creates the search command with app dependencies.
func (a *App) NewSearchCommand() *cobra.Command {
	return search.NewCommand(a)
}

// NewServeCommand creates the serve command with app dependencies.
func (a *App) NewServeCommand() *cobra.Command {
	return serve.NewCommand(a)
}

// NewExtractCommand creates the extract command with app dependencies.
func (a *App) NewExtractCommand() *cobra.Command {
	return extract.NewCommand(a)
}

// NewConvertCommand creates the convert command with app dependencies.
func (a *App) NewConvertCommand() *cobra.Command {
	return convert.NewCommand(a)
}

// NewLoadCommand creates the load command with app dependencies.
func (a *App) NewLoadCommand() *cobra.Command {
	return load.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return version.NewCommand(a)
}
