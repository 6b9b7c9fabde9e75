package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/privacykit/cohortd/internal/cohort"
	"github.com/privacykit/cohortd/internal/config"
)

var assignCmd = &cobra.Command{
	Use:   "assign [visits.json]",
	Short: "Assign cohorts from a browsing history export",
	Long: `Reads a JSON file of domain visits and computes the device's cohort
assignments. The visits file is a JSON array of objects with "domain",
"timestamp", and "visit_count" fields. Visits are consumed in memory and
never persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		st, err := buildStack(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading visits file: %w", err)
		}

		var visits []cohort.DomainVisit
		if err := json.Unmarshal(data, &visits); err != nil {
			return fmt.Errorf("parsing visits file: %w", err)
		}

		assignments := st.cohorts.AssignCohorts(visits)
		if len(assignments) == 0 {
			fmt.Println("No cohorts assigned. Not enough qualifying visits.")
			return nil
		}

		shareable, _ := cmd.Flags().GetBool("shareable")
		if shareable {
			assignments = st.cohorts.GetCohortsForSharing()
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(assignments)
	},
}

func init() {
	assignCmd.Flags().Bool("shareable", false, "print only the privacy-limited shareable subset")
	rootCmd.AddCommand(assignCmd)
}
