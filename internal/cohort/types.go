package cohort

import "time"

// Engine tuning constants. These are part of the cohort contract and
// are not configurable.
const (
	// MaxCohorts is the most cohorts a device holds at once.
	MaxCohorts = 5
	// SharedCohorts is the most cohorts ever disclosed to a caller.
	SharedCohorts = 3
	// RetentionWeeks is how long an assignment may live before rotation
	// drops it.
	RetentionWeeks = 3
	// MinVisits is the minimum total visit count for a domain to
	// contribute to scoring.
	MinVisits = 3

	FrequencyWeight = 0.6
	RecencyWeight   = 0.4
)

// AssignmentTTL is the lifetime of a fresh assignment.
const AssignmentTTL = RetentionWeeks * 7 * 24 * time.Hour

// updateCooldown gates how often the weekly maintenance pass may run.
const updateCooldown = 7 * 24 * time.Hour

// DomainVisit is one observation from the history-monitoring collaborator.
// Visits are consumed, never persisted.
type DomainVisit struct {
	Domain     string    `json:"domain"`
	Timestamp  time.Time `json:"timestamp"`
	VisitCount int       `json:"visit_count"`
}

// Assignment places the device in one interest cohort for a bounded time.
type Assignment struct {
	TopicID      int       `json:"topic_id"`
	TopicName    string    `json:"topic_name"`
	Confidence   float64   `json:"confidence"`
	AssignedDate time.Time `json:"assigned_date"`
	ExpiryDate   time.Time `json:"expiry_date"`
}

// domainStats aggregates the visit history of one domain.
type domainStats struct {
	totalVisits  int
	recentVisits int
	firstVisit   time.Time
	lastVisit    time.Time
}

// topicScore accumulates contributions from every domain that classified
// into a topic.
type topicScore struct {
	score         float64
	maxConfidence float64
	domains       map[string]struct{}
	totalVisits   int
}
