package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// PrivacyPreset bundles the noise and suppression parameters for a
// privacy tier.
type PrivacyPreset struct {
	Epsilon              float64
	MinDataPoints        int
	MinCohortSize        int
	SuppressionThreshold int
}

// privacyPresets maps each tier to its parameters. Lower epsilon means more
// noise and stronger privacy.
var privacyPresets = map[string]PrivacyPreset{
	"strict":     {Epsilon: 0.5, MinDataPoints: 200, MinCohortSize: 100, SuppressionThreshold: 20},
	"balanced":   {Epsilon: 1.0, MinDataPoints: 100, MinCohortSize: 50, SuppressionThreshold: 10},
	"permissive": {Epsilon: 2.0, MinDataPoints: 50, MinCohortSize: 25, SuppressionThreshold: 5},
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to cohortd! Let's configure your deployment.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Privacy tier.
	tierPrompt := promptui.Select{
		Label: "Select privacy tier",
		Items: []string{
			"strict     - heavy noise, high suppression thresholds",
			"balanced   - default differential-privacy parameters",
			"permissive - lighter noise for high-volume deployments",
		},
	}
	tierIdx, _, err := tierPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("privacy tier selection: %w", err)
	}
	tiers := []string{"strict", "balanced", "permissive"}
	preset := privacyPresets[tiers[tierIdx]]
	cfg.Privacy.Epsilon = preset.Epsilon
	cfg.Privacy.MinDataPoints = preset.MinDataPoints
	cfg.Privacy.MinCohortSize = preset.MinCohortSize
	cfg.Privacy.SuppressionThreshold = preset.SuppressionThreshold

	// 2. Listen port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 3. Data directory.
	dirPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	dir, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data directory prompt: %w", err)
	}
	cfg.DataDir = dir

	// 4. Event retention.
	retentionPrompt := promptui.Prompt{
		Label:   "Event retention (days)",
		Default: strconv.Itoa(cfg.Maintenance.EventRetentionDays),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fmt.Errorf("enter a positive number of days")
			}
			return nil
		},
	}
	retStr, err := retentionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("retention prompt: %w", err)
	}
	cfg.Maintenance.EventRetentionDays, _ = strconv.Atoi(retStr)

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Printf("Configuration written to %s\n", path)
	return cfg, nil
}
