package config

// DefaultDenylist are domain glob patterns never classified or stored by
// default. Anything matching is treated as unclassifiable.
var DefaultDenylist = []string{
	"localhost",
	"*.local",
	"*.internal",
	"*.test",
	"*.bank",
	"*.gov",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:     8080,
		DataDir:  ".cohortd",
		Denylist: DefaultDenylist,
		Privacy: PrivacyConfig{
			Epsilon:              1.0,
			Sensitivity:          1.0,
			MinDataPoints:        100,
			MinCohortSize:        50,
			SuppressionThreshold: 10,
		},
		Maintenance: MaintenanceConfig{
			IntervalHours:      24,
			EventRetentionDays: 30,
		},
	}
}
