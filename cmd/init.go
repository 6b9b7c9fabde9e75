package cmd

import (
	"github.com/spf13/cobra"

	"github.com/privacykit/cohortd/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cohortd configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose a privacy tier and server settings, and generates a .cohortd.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
