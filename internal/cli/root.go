package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "courtsim",
	Short: "Courtroom coding simulation for the terminal",
	Long: `Courtsim drops you into a 40-minute sprint: finish three coding tasks
while alerts interrupt you. Critical alerts left unresolved put you in
front of the judge.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("courtsim version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
