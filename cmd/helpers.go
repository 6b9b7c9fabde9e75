package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/privacykit/cohortd/internal/classifier"
	"github.com/privacykit/cohortd/internal/cohort"
	"github.com/privacykit/cohortd/internal/config"
	"github.com/privacykit/cohortd/internal/db"
	"github.com/privacykit/cohortd/internal/metrics"
	"github.com/privacykit/cohortd/internal/taxonomy"
)

// stack bundles the wired runtime components shared by the commands.
type stack struct {
	db         *db.DB
	taxonomy   *taxonomy.Manager
	classifier *classifier.Classifier
	cohorts    *cohort.Engine
	metrics    *metrics.Engine
}

// buildStack opens the database and wires taxonomy, classifier, cohort
// and metrics engines from config. This is the shared version used by the
// server, serve, classify, assign, and events commands.
func buildStack(ctx context.Context, cfg *config.Config) (*stack, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "cohortd.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var source taxonomy.Source = taxonomy.DefaultSource()
	if cfg.TaxonomyFile != "" {
		source = taxonomy.FileSource{Path: cfg.TaxonomyFile}
	}
	mgr := taxonomy.NewManager(source)

	tax, err := mgr.Get(ctx)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("loading taxonomy: %w", err)
	}

	cls, err := classifier.NewPersistent(ctx, tax, classifier.NewStore(database))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("loading classifier: %w", err)
	}
	cls.SetDenylist(classifier.NewDenylist(cfg.Denylist))
	if len(cfg.KeywordRules) > 0 {
		rules := make([]classifier.KeywordRule, 0, len(cfg.KeywordRules))
		for _, r := range cfg.KeywordRules {
			rules = append(rules, classifier.KeywordRule{
				Keywords: r.Keywords,
				TopicIDs: r.TopicIDs,
				Weight:   r.Weight,
			})
		}
		cls.SetKeywordRules(rules)
	}

	cohorts := cohort.NewEngine(tax, cls)

	me := metrics.NewEngine(metrics.NewStore(database), metrics.Params{
		Epsilon:              cfg.Privacy.Epsilon,
		Sensitivity:          cfg.Privacy.Sensitivity,
		MinDataPoints:        cfg.Privacy.MinDataPoints,
		MinCohortSize:        cfg.Privacy.MinCohortSize,
		SuppressionThreshold: cfg.Privacy.SuppressionThreshold,
	}, nil)

	return &stack{
		db:         database,
		taxonomy:   mgr,
		classifier: cls,
		cohorts:    cohorts,
		metrics:    me,
	}, nil
}

func (s *stack) Close() error {
	return s.db.Close()
}
