package serve

import (
	"github.com/spf13/cobra"

	"github.com/ZacheryGlass/scriptdeck/internal/app"
	"github.com/ZacheryGlass/scriptdeck/internal/buildinfo"
	"github.com/ZacheryGlass/scriptdeck/internal/mcpserver"
)

var cfgPath string

// Cmd represents the `scriptdeck serve` command.
var Cmd = &cobra.Command{
	Use:           "serve",
	Short:         "Serve the scripts as MCP tools over stdio",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Load(cfgPath)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if _, err := a.Registry.Refresh(cmd.Context()); err != nil {
			return err
		}
		a.Logger.Info("serving MCP over stdio",
			"scripts_dir", a.Registry.Dir(),
			"version", buildinfo.Summary())

		s := mcpserver.NewServer(&mcpserver.Deps{
			Registry: a.Registry,
			Engine:   a.Engine,
			History:  a.History,
			Logger:   a.Logger,
			Version:  buildinfo.Summary(),
		})
		return mcpserver.Serve(s)
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.yaml)")
}
