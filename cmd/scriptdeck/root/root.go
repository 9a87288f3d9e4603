package root

import (
	"github.com/spf13/cobra"

	"github.com/ZacheryGlass/scriptdeck/cmd/scriptdeck/describe"
	"github.com/ZacheryGlass/scriptdeck/cmd/scriptdeck/historycmd"
	"github.com/ZacheryGlass/scriptdeck/cmd/scriptdeck/list"
	"github.com/ZacheryGlass/scriptdeck/cmd/scriptdeck/runcmd"
	"github.com/ZacheryGlass/scriptdeck/cmd/scriptdeck/serve"
	"github.com/ZacheryGlass/scriptdeck/cmd/scriptdeck/version"
)

// NewRootCmd creates the root command for scriptdeck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scriptdeck",
		Short: "Discover, classify and run local automation scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(list.Cmd)
	cmd.AddCommand(describe.Cmd)
	cmd.AddCommand(runcmd.Cmd)
	cmd.AddCommand(historycmd.Cmd)
	cmd.AddCommand(serve.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
