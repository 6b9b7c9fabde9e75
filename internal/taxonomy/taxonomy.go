package taxonomy

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Taxonomy is a validated, read-only view over a batch of topics. All
// lookup structures are built once at load time.
type Taxonomy struct {
	byID     map[int]Topic
	children map[int][]int
	byName   map[string]int
}

// Load validates a raw topic batch and builds the lookup structures.
// Validation order: required fields, duplicate ids, parent resolution,
// level consistency. Any violation aborts the whole load.
func Load(raw []Topic) (*Taxonomy, error) {
	byID := make(map[int]Topic, len(raw))

	for _, t := range raw {
		if t.ID <= 0 {
			return nil, &ValidationError{TopicID: t.ID, Reason: "id must be positive"}
		}
		if t.Name == "" {
			return nil, &ValidationError{TopicID: t.ID, Reason: "name is required"}
		}
		if t.Level < 0 {
			return nil, &ValidationError{TopicID: t.ID, Reason: "level must be non-negative"}
		}
		if t.ParentID != nil && *t.ParentID <= 0 {
			return nil, &ValidationError{TopicID: t.ID, Reason: "parent_id must be positive"}
		}
		if _, dup := byID[t.ID]; dup {
			return nil, &ValidationError{TopicID: t.ID, Reason: "duplicate id"}
		}
		byID[t.ID] = t
	}

	for _, t := range raw {
		if t.ParentID == nil {
			if t.Level != 0 {
				return nil, &ValidationError{TopicID: t.ID, Reason: "root topic must have level 0"}
			}
			continue
		}
		parent, ok := byID[*t.ParentID]
		if !ok {
			return nil, &ValidationError{TopicID: t.ID, Reason: "parent_id references unknown topic"}
		}
		if t.Level != parent.Level+1 {
			return nil, &ValidationError{TopicID: t.ID, Reason: "level inconsistent with parent"}
		}
	}

	children := make(map[int][]int)
	byName := make(map[string]int, len(raw))
	for _, t := range raw {
		byName[strings.ToLower(t.Name)] = t.ID
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t.ID)
		}
	}
	for id := range children {
		sort.Ints(children[id])
	}

	return &Taxonomy{byID: byID, children: children, byName: byName}, nil
}

// GetByID returns the topic with the given id.
func (tx *Taxonomy) GetByID(id int) (Topic, bool) {
	t, ok := tx.byID[id]
	return t, ok
}

// GetByName returns the topic with the given name, case-insensitively.
func (tx *Taxonomy) GetByName(name string) (Topic, bool) {
	id, ok := tx.byName[strings.ToLower(name)]
	if !ok {
		return Topic{}, false
	}
	return tx.byID[id], true
}

// GetChildren returns the direct children of a topic, ordered by id.
func (tx *Taxonomy) GetChildren(id int) []Topic {
	ids := tx.children[id]
	out := make([]Topic, 0, len(ids))
	for _, cid := range ids {
		out = append(out, tx.byID[cid])
	}
	return out
}

// GetParent returns the parent of a topic, if it has one.
func (tx *Taxonomy) GetParent(id int) (Topic, bool) {
	t, ok := tx.byID[id]
	if !ok || t.ParentID == nil {
		return Topic{}, false
	}
	return tx.byID[*t.ParentID], true
}

// GetAncestors walks from a topic to its root, nearest parent first.
func (tx *Taxonomy) GetAncestors(id int) []Topic {
	var out []Topic
	t, ok := tx.byID[id]
	if !ok {
		return out
	}
	for t.ParentID != nil {
		t = tx.byID[*t.ParentID]
		out = append(out, t)
	}
	return out
}

// GetDescendants returns all topics below the given one in pre-order.
func (tx *Taxonomy) GetDescendants(id int) []Topic {
	if _, ok := tx.byID[id]; !ok {
		return nil
	}
	var out []Topic
	stack := append([]int(nil), reversed(tx.children[id])...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, tx.byID[cur])
		stack = append(stack, reversed(tx.children[cur])...)
	}
	return out
}

func reversed(ids []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

// GetRoots returns all level-0 topics ordered by id.
func (tx *Taxonomy) GetRoots() []Topic {
	return tx.GetTopicsByLevel(0)
}

// GetTopicsByLevel returns all topics at the given depth, ordered by id.
func (tx *Taxonomy) GetTopicsByLevel(level int) []Topic {
	var out []Topic
	for _, t := range tx.byID {
		if t.Level == level {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search returns topics whose name or description contains the keyword,
// case-insensitively, ordered by id.
func (tx *Taxonomy) Search(keyword string) []Topic {
	kw := strings.ToLower(keyword)
	if kw == "" {
		return nil
	}
	var out []Topic
	for _, t := range tx.byID {
		if strings.Contains(strings.ToLower(t.Name), kw) ||
			strings.Contains(strings.ToLower(t.Description), kw) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsSensitive reports whether the topic is flagged sensitive. Unknown
// topics are treated as sensitive so they never surface in cohorts.
func (tx *Taxonomy) IsSensitive(id int) bool {
	t, ok := tx.byID[id]
	if !ok {
		return true
	}
	return t.IsSensitive
}

// GetNonSensitiveTopics returns every topic not flagged sensitive,
// ordered by id.
func (tx *Taxonomy) GetNonSensitiveTopics() []Topic {
	var out []Topic
	for _, t := range tx.byID {
		if !t.IsSensitive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of topics.
func (tx *Taxonomy) Len() int { return len(tx.byID) }

// Manager memoizes a taxonomy loaded from a Source. The source is only
// consulted once; ClearCache forces a reload on the next access.
type Manager struct {
	source Source

	mu     sync.Mutex
	cached *Taxonomy
}

// NewManager creates a Manager over the given source.
func NewManager(source Source) *Manager {
	return &Manager{source: source}
}

// Get returns the cached taxonomy, loading and validating it on first use.
func (m *Manager) Get(ctx context.Context) (*Taxonomy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached != nil {
		return m.cached, nil
	}
	raw, err := m.source.Topics(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := Load(raw)
	if err != nil {
		return nil, err
	}
	m.cached = tx
	return tx, nil
}

// ClearCache discards the cached taxonomy so the next Get reloads it.
// Intended for tests and hot-reload scenarios.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}
