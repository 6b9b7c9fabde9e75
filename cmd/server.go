package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/privacykit/cohortd/internal/config"
	"github.com/privacykit/cohortd/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the cohortd HTTP server",
	Long:  `Starts the cohortd server with the taxonomy, classification, cohort, and metrics REST APIs plus a websocket event stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if serverPort != 0 {
			cfg.Port = serverPort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := buildStack(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(*cfg, st.db, st.taxonomy, st.classifier, st.cohorts, st.metrics)

		// Background maintenance: cohort rotation and event retention.
		go runMaintenance(ctx, st, cfg)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "cohortd v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Data dir: %s\n", cfg.DataDir)
		fmt.Fprintf(os.Stderr, "  Privacy epsilon: %.2f\n", cfg.Privacy.Epsilon)

		return srv.Start()
	},
}

// runMaintenance periodically rotates expired cohorts and deletes events
// past the retention window.
func runMaintenance(ctx context.Context, st *stack, cfg *config.Config) {
	interval := time.Duration(cfg.Maintenance.IntervalHours) * time.Hour
	retention := time.Duration(cfg.Maintenance.EventRetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.cohorts.UpdateWeeklyCohorts()
			deleted, err := st.metrics.CleanupExpiredEvents(ctx, retention)
			if err != nil {
				fmt.Fprintf(os.Stderr, "maintenance: event cleanup: %v\n", err)
				continue
			}
			if verbose && deleted > 0 {
				fmt.Fprintf(os.Stderr, "maintenance: deleted %d expired events\n", deleted)
			}
		}
	}
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
