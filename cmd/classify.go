package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/privacykit/cohortd/internal/config"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [domain...]",
	Short: "Classify domains into interest taxonomy topics",
	Long:  `Classifies one or more domains against the interest taxonomy using stored mappings, parent-domain inheritance, and keyword rules.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := config.Load(cfgFile)
		exitOnError(err)

		st, err := buildStack(ctx, cfg)
		exitOnError(err)
		defer st.Close()

		jsonOutput, _ := cmd.Flags().GetBool("json")

		results := st.classifier.ClassifyBatch(args)

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			exitOnError(enc.Encode(results))
			return
		}

		tax, err := st.taxonomy.Get(ctx)
		exitOnError(err)

		for _, res := range results {
			if len(res.TopicIDs) == 0 {
				fmt.Printf("%s: no topics matched\n", res.Domain)
				continue
			}
			fmt.Printf("%s (confidence %.2f, source %s):\n", res.Domain, res.Confidence, res.Source)
			for _, id := range res.TopicIDs {
				name := "unknown"
				if topic, ok := tax.GetByID(id); ok {
					name = topic.Name
				}
				fmt.Printf("  %d: %s\n", id, name)
			}
		}
	},
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(classifyCmd)
}
