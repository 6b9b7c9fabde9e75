package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cohortd",
	Short: "Privacy-preserving interest cohorts and ad metrics",
	Long: `Cohortd assigns a device to broad interest cohorts from local browsing
history and aggregates advertising metrics under differential privacy.
Raw visits never leave the device; callers only ever see a capped,
noised view. It integrates with AI agents via MCP for cohort and
classification tooling.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".cohortd.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
