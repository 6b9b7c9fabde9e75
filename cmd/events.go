package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/privacykit/cohortd/internal/config"
	"github.com/privacykit/cohortd/internal/metrics"
	"github.com/privacykit/cohortd/internal/progress"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage stored metrics events",
}

var eventsImportCmd = &cobra.Command{
	Use:   "import [events.ndjson]",
	Short: "Bulk import metrics events from an NDJSON file",
	Long: `Imports newline-delimited JSON metrics events. Each line is one event
with "event_type", "cohort_id", "domain", and optional "timestamp",
"event_id", and "metadata" fields. Events without an id get one assigned.`,
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

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening events file: %w", err)
		}
		defer f.Close()

		// First pass counts lines so the bar has a total.
		total, err := countLines(f)
		if err != nil {
			return err
		}
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}

		reporter := progress.NewReporter()
		reporter.Start(total)
		defer reporter.Finish()

		var imported, skipped int
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		for lineNo := 1; scanner.Scan(); lineNo++ {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var ev metrics.Event
			if err := json.Unmarshal(line, &ev); err != nil {
				skipped++
				if verbose {
					fmt.Fprintf(os.Stderr, "line %d: invalid JSON: %v\n", lineNo, err)
				}
				continue
			}
			if ev.EventID == "" {
				ev.EventID = uuid.NewString()
			}

			if _, err := st.metrics.RecordEvent(ctx, ev); err != nil {
				skipped++
				if verbose {
					fmt.Fprintf(os.Stderr, "line %d: %v\n", lineNo, err)
				}
				continue
			}
			imported++
			reporter.Update(imported+skipped, fmt.Sprintf("Importing events (%d ok)", imported))
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading events file: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Imported %d events, skipped %d\n", imported, skipped)
		return nil
	},
}

// countLines counts non-empty lines in f without keeping them in memory.
func countLines(f *os.File) (int, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			n++
		}
	}
	return n, scanner.Err()
}

func init() {
	eventsCmd.AddCommand(eventsImportCmd)
	rootCmd.AddCommand(eventsCmd)
}
