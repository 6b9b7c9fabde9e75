package taxonomy

import "fmt"

// Topic is a single node in the interest taxonomy. Topics are immutable
// once a taxonomy has been loaded.
type Topic struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	ParentID    *int   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Level       int    `json:"level" yaml:"level"`
	IsSensitive bool   `json:"is_sensitive" yaml:"sensitive"`
	Description string `json:"description" yaml:"description"`
}

// ValidationError describes why a raw topic batch was rejected. A single
// invalid topic fails the entire load; no partial taxonomy is ever exposed.
type ValidationError struct {
	TopicID int
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid topic %d: %s", e.TopicID, e.Reason)
}
