package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/privacykit/cohortd/internal/taxonomy"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect and validate the interest taxonomy",
}

var taxonomyValidateCmd = &cobra.Command{
	Use:   "validate [file.yml]",
	Short: "Validate a taxonomy YAML file",
	Long:  `Checks a taxonomy file for duplicate ids, dangling parents, and level inconsistencies. With no argument the built-in taxonomy is validated.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var source taxonomy.Source = taxonomy.DefaultSource()
		if len(args) == 1 {
			source = taxonomy.FileSource{Path: args[0]}
		}

		topics, err := source.Topics(context.Background())
		if err != nil {
			return err
		}

		tax, err := taxonomy.Load(topics)
		if err != nil {
			return fmt.Errorf("taxonomy invalid: %w", err)
		}

		fmt.Printf("Taxonomy valid: %d topics, %d roots\n", tax.Len(), len(tax.GetRoots()))
		return nil
	},
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show [file.yml]",
	Short: "Print the taxonomy as an indented tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var source taxonomy.Source = taxonomy.DefaultSource()
		if len(args) == 1 {
			source = taxonomy.FileSource{Path: args[0]}
		}

		topics, err := source.Topics(context.Background())
		if err != nil {
			return err
		}

		tax, err := taxonomy.Load(topics)
		if err != nil {
			return fmt.Errorf("taxonomy invalid: %w", err)
		}

		for _, root := range tax.GetRoots() {
			printTopic(tax, root)
		}
		return nil
	},
}

func printTopic(tax *taxonomy.Taxonomy, topic taxonomy.Topic) {
	indent := strings.Repeat("  ", topic.Level)
	marker := ""
	if topic.IsSensitive {
		marker = " [sensitive]"
	}
	fmt.Printf("%s%d: %s%s\n", indent, topic.ID, topic.Name, marker)
	for _, child := range tax.GetChildren(topic.ID) {
		printTopic(tax, child)
	}
}

func init() {
	taxonomyCmd.AddCommand(taxonomyValidateCmd)
	taxonomyCmd.AddCommand(taxonomyShowCmd)
	rootCmd.AddCommand(taxonomyCmd)
}
