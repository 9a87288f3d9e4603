package describe

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZacheryGlass/scriptdeck/internal/app"
)

var cfgPath string

// Cmd represents the `scriptdeck describe` command.
var Cmd = &cobra.Command{
	Use:           "describe <script>",
	Short:         "Show a script's parameters and execution strategy",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Load(cfgPath)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		snap, err := a.Registry.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		d, ok := snap.Lookup(args[0])
		if !ok {
			return fmt.Errorf("script not found: %s", args[0])
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.yaml)")
}
