package historycmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZacheryGlass/scriptdeck/internal/app"
)

var (
	cfgPath    string
	flagScript string
	flagLimit  int
)

// Cmd represents the `scriptdeck history` command.
var Cmd = &cobra.Command{
	Use:           "history",
	Short:         "Show recent executions, newest first",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Load(cfgPath)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if a.History == nil {
			return errors.New("history recording is disabled in the config")
		}
		entries, err := a.History.Recent(cmd.Context(), flagScript, flagLimit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.yaml)")
	Cmd.Flags().StringVar(&flagScript, "script", "", "Limit to one script's history")
	Cmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of entries")
}
