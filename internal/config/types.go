package config

// Config is the top-level cohortd configuration, corresponding to .cohortd.yml.
type Config struct {
	Port         int      `yaml:"port" koanf:"port"`
	DataDir      string   `yaml:"data_dir" koanf:"data_dir"`
	TaxonomyFile string   `yaml:"taxonomy_file" koanf:"taxonomy_file"`
	Denylist     []string `yaml:"denylist" koanf:"denylist"`
	AllowAll     bool     `yaml:"allow_all_origins" koanf:"allow_all_origins"`

	KeywordRules []KeywordRuleConfig `yaml:"keyword_rules" koanf:"keyword_rules"`

	Privacy     PrivacyConfig     `yaml:"privacy" koanf:"privacy"`
	Maintenance MaintenanceConfig `yaml:"maintenance" koanf:"maintenance"`
}

// KeywordRuleConfig replaces the built-in keyword classification rules
// when present.
type KeywordRuleConfig struct {
	Keywords []string `yaml:"keywords" koanf:"keywords"`
	TopicIDs []int    `yaml:"topic_ids" koanf:"topic_ids"`
	Weight   float64  `yaml:"weight" koanf:"weight"`
}

// PrivacyConfig holds the differential-privacy and suppression parameters
// applied by the metrics aggregation engine.
type PrivacyConfig struct {
	Epsilon              float64 `yaml:"epsilon" koanf:"epsilon"`
	Sensitivity          float64 `yaml:"sensitivity" koanf:"sensitivity"`
	MinDataPoints        int     `yaml:"min_data_points" koanf:"min_data_points"`
	MinCohortSize        int     `yaml:"min_cohort_size" koanf:"min_cohort_size"`
	SuppressionThreshold int     `yaml:"suppression_threshold" koanf:"suppression_threshold"`
}

// MaintenanceConfig controls the background maintenance schedule.
type MaintenanceConfig struct {
	IntervalHours      int `yaml:"interval_hours" koanf:"interval_hours"`
	EventRetentionDays int `yaml:"event_retention_days" koanf:"event_retention_days"`
}
