package list

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZacheryGlass/scriptdeck/internal/app"
)

var (
	cfgPath  string
	flagJSON bool
	flagAll  bool
)

// Cmd represents the `scriptdeck list` command.
var Cmd = &cobra.Command{
	Use:           "list",
	Short:         "List discovered scripts",
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
		scripts := snap.Available()
		if flagAll {
			scripts = snap.All()
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(scripts)
		}

		if len(scripts) == 0 {
			fmt.Fprintf(os.Stdout, "no scripts found in %s\n", a.Registry.Dir())
			return nil
		}
		for _, d := range scripts {
			line := fmt.Sprintf("%-30s %-20s %s", d.Name, d.Info.Strategy, d.Info.DisplayName)
			switch {
			case d.Disabled:
				line = fmt.Sprintf("%-30s %-20s %s", d.Name, "disabled", d.Info.DisplayName)
			case !d.Info.Executable():
				line = fmt.Sprintf("%-30s %-20s %s", d.Name, "broken", d.Info.DisplayName)
			}
			fmt.Fprintln(os.Stdout, line)
		}
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (.yaml)")
	Cmd.Flags().BoolVar(&flagJSON, "json", false, "Print the full descriptors as JSON")
	Cmd.Flags().BoolVar(&flagAll, "all", false, "Include disabled and broken scripts")
}
