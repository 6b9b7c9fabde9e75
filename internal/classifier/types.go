package classifier

import (
	"fmt"
	"time"
)

// Source identifies how a domain mapping was obtained.
type Source string

const (
	SourceManual  Source = "manual"
	SourceML      Source = "ml"
	SourceKeyword Source = "keyword"
)

// Mapping associates a normalized domain with topic ids and a confidence
// score. At most one mapping exists per domain; later writes replace.
type Mapping struct {
	Domain      string    `json:"domain"`
	TopicIDs    []int     `json:"topic_ids"`
	Confidence  float64   `json:"confidence"`
	Source      Source    `json:"source"`
	LastUpdated time.Time `json:"last_updated"`
}

// Result is the outcome of classifying a single domain.
type Result struct {
	Domain          string   `json:"domain"`
	TopicIDs        []int    `json:"topic_ids"`
	Confidence      float64  `json:"confidence"`
	Source          Source   `json:"source"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// KeywordRule scores topics for domains that contain any of its keywords
// as substrings.
type KeywordRule struct {
	Keywords []string `json:"keywords" yaml:"keywords"`
	TopicIDs []int    `json:"topic_ids" yaml:"topic_ids"`
	Weight   float64  `json:"weight" yaml:"weight"`
}

// InvalidTopicError reports a mapping that references a topic id not
// present in the taxonomy.
type InvalidTopicError struct {
	TopicID int
}

func (e *InvalidTopicError) Error() string {
	return fmt.Sprintf("unknown topic id %d", e.TopicID)
}
