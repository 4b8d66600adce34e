package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"courtsim/internal/options"
)

var scenariosServerURL string

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the available scenarios",
	Long: `Prints the scenario catalog. Without --server-url the builtin
catalog is shown; with it, the catalog is fetched from a courtsim server.`,
	RunE: runScenarios,
}

func init() {
	scenariosCmd.Flags().StringVar(&scenariosServerURL, "server-url", "", "fetch scenarios from a courtsim server")

	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	provider := options.Provider(options.Builtin())
	if scenariosServerURL != "" {
		provider = options.NewRemoteProvider(scenariosServerURL, nil, zap.NewNop())
	}

	out := cmd.OutOrStdout()
	payload := provider.Fetch(cmd.Context())
	fmt.Fprintf(out, "source: %s\n", payload.Source)
	for _, opt := range payload.Options {
		fmt.Fprintf(out, "%s\t%s\n", opt.ID, opt.Title)
		if opt.Bias != nil {
			fmt.Fprintf(out, "\tfavors %v, cadence %s, grace %s\n",
				opt.Bias.Categories, opt.Bias.AlertCadence(), opt.Bias.CriticalGrace())
		}
	}
	return nil
}
