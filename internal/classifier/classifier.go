package classifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/privacykit/cohortd/internal/taxonomy"
)

// parentDecay is applied once whenever a domain is resolved through a
// parent-domain mapping, regardless of how many labels were stripped.
const parentDecay = 0.8

// keywordTopicLimit caps how many topics a keyword classification returns.
const keywordTopicLimit = 3

// keywordConfidenceCap bounds the confidence of any keyword-based result.
const keywordConfidenceCap = 0.7

// ErrEmptyDomain is returned when a domain normalizes to the empty string.
var ErrEmptyDomain = errors.New("empty domain")

// Classifier maps domains to taxonomy topics via an exact mapping table,
// parent-domain fallback, and keyword rules. The mapping table is
// read-mostly; all methods are safe for concurrent use.
type Classifier struct {
	tax      *taxonomy.Taxonomy
	store    *Store
	denylist *Denylist
	rules    []KeywordRule

	mu       sync.RWMutex
	mappings map[string]Mapping
}

// New creates a classifier with the built-in preset table and keyword
// rules and no persistence. Presets referencing topics absent from the
// taxonomy are skipped.
func New(tax *taxonomy.Taxonomy) *Classifier {
	c := &Classifier{
		tax:      tax,
		rules:    defaultKeywordRules,
		mappings: make(map[string]Mapping, len(presetMappings)),
	}
	now := time.Now().UTC()
	for _, m := range presetMappings {
		if !c.topicsKnown(m.TopicIDs) {
			continue
		}
		m.LastUpdated = now
		c.mappings[m.Domain] = m
	}
	return c
}

// NewPersistent creates a classifier whose mapping table is backed by the
// store. On an empty store the presets are seeded; otherwise the stored
// table wins.
func NewPersistent(ctx context.Context, tax *taxonomy.Taxonomy, store *Store) (*Classifier, error) {
	c := New(tax)
	c.store = store

	stored, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading domain mappings: %w", err)
	}
	if len(stored) == 0 {
		for _, m := range c.mappings {
			if err := store.Upsert(ctx, m); err != nil {
				return nil, fmt.Errorf("seeding preset mapping %s: %w", m.Domain, err)
			}
		}
		return c, nil
	}

	c.mappings = make(map[string]Mapping, len(stored))
	for _, m := range stored {
		c.mappings[m.Domain] = m
	}
	return c, nil
}

// SetDenylist installs the domain denylist. Denylisted domains always
// classify to the zero-confidence result.
func (c *Classifier) SetDenylist(d *Denylist) { c.denylist = d }

// SetKeywordRules replaces the keyword rule table.
func (c *Classifier) SetKeywordRules(rules []KeywordRule) {
	c.mu.Lock()
	c.rules = append([]KeywordRule(nil), rules...)
	c.mu.Unlock()
}

func (c *Classifier) topicsKnown(ids []int) bool {
	for _, id := range ids {
		if _, ok := c.tax.GetByID(id); !ok {
			return false
		}
	}
	return true
}

// Classify resolves a domain to topic ids with a confidence score.
func (c *Classifier) Classify(domain string) (Result, error) {
	host := Normalize(domain)
	if host == "" {
		return Result{}, ErrEmptyDomain
	}
	if c.denylist.Blocked(host) {
		return zeroResult(host), nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// Exact match.
	if m, ok := c.mappings[host]; ok {
		return Result{
			Domain:     host,
			TopicIDs:   append([]int(nil), m.TopicIDs...),
			Confidence: m.Confidence,
			Source:     m.Source,
		}, nil
	}

	// Parent-domain match: a.b.c -> b.c -> c, first hit wins.
	for _, candidate := range parentCandidates(host) {
		if m, ok := c.mappings[candidate]; ok {
			return Result{
				Domain:     host,
				TopicIDs:   append([]int(nil), m.TopicIDs...),
				Confidence: m.Confidence * parentDecay,
				Source:     m.Source,
			}, nil
		}
	}

	return c.classifyByKeywords(host), nil
}

// classifyByKeywords accumulates per-topic scores from the rule table and
// keeps the highest-scoring topics. Caller holds at least a read lock.
func (c *Classifier) classifyByKeywords(host string) Result {
	scores := make(map[int]float64)
	matchedSet := make(map[string]struct{})

	for _, rule := range c.rules {
		if len(rule.Keywords) == 0 {
			continue
		}
		found := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(host, kw) {
				found++
				matchedSet[kw] = struct{}{}
			}
		}
		if found == 0 {
			continue
		}
		score := float64(found) / float64(len(rule.Keywords)) * rule.Weight
		for _, id := range rule.TopicIDs {
			scores[id] += score
		}
	}

	if len(scores) == 0 {
		return zeroResult(host)
	}

	type topicScore struct {
		id    int
		score float64
	}
	ranked := make([]topicScore, 0, len(scores))
	maxScore := 0.0
	for id, score := range scores {
		ranked = append(ranked, topicScore{id: id, score: score})
		if score > maxScore {
			maxScore = score
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if len(ranked) > keywordTopicLimit {
		ranked = ranked[:keywordTopicLimit]
	}

	ids := make([]int, len(ranked))
	for i, ts := range ranked {
		ids[i] = ts.id
	}
	matched := make([]string, 0, len(matchedSet))
	for kw := range matchedSet {
		matched = append(matched, kw)
	}
	sort.Strings(matched)

	confidence := maxScore / 2
	if confidence > keywordConfidenceCap {
		confidence = keywordConfidenceCap
	}

	return Result{
		Domain:          host,
		TopicIDs:        ids,
		Confidence:      confidence,
		Source:          SourceKeyword,
		MatchedKeywords: matched,
	}
}

// ClassifyBatch classifies each domain independently. A domain whose
// classification fails degrades to the zero-confidence result instead of
// aborting the batch.
func (c *Classifier) ClassifyBatch(domains []string) []Result {
	out := make([]Result, 0, len(domains))
	for _, d := range domains {
		res, err := c.Classify(d)
		if err != nil {
			res = zeroResult(Normalize(d))
		}
		out = append(out, res)
	}
	return out
}

// AddMapping inserts or replaces a manual mapping for the domain. The
// confidence is clamped to [0,1]. If any topic id is unknown the existing
// table is left untouched.
func (c *Classifier) AddMapping(ctx context.Context, domain string, topicIDs []int, confidence float64) error {
	host := Normalize(domain)
	if host == "" {
		return ErrEmptyDomain
	}
	for _, id := range topicIDs {
		if _, ok := c.tax.GetByID(id); !ok {
			return &InvalidTopicError{TopicID: id}
		}
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	m := Mapping{
		Domain:      host,
		TopicIDs:    append([]int(nil), topicIDs...),
		Confidence:  confidence,
		Source:      SourceManual,
		LastUpdated: time.Now().UTC(),
	}
	if c.store != nil {
		if err := c.store.Upsert(ctx, m); err != nil {
			return fmt.Errorf("persisting mapping %s: %w", host, err)
		}
	}

	c.mu.Lock()
	c.mappings[host] = m
	c.mu.Unlock()
	return nil
}

// RemoveMapping deletes the mapping for the domain, if any.
func (c *Classifier) RemoveMapping(ctx context.Context, domain string) error {
	host := Normalize(domain)
	if c.store != nil {
		if err := c.store.Delete(ctx, host); err != nil {
			return fmt.Errorf("deleting mapping %s: %w", host, err)
		}
	}
	c.mu.Lock()
	delete(c.mappings, host)
	c.mu.Unlock()
	return nil
}

// GetMapping returns the mapping for the domain, if present.
func (c *Classifier) GetMapping(domain string) (Mapping, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.mappings[Normalize(domain)]
	if ok {
		m.TopicIDs = append([]int(nil), m.TopicIDs...)
	}
	return m, ok
}

// GetAllMappings returns a snapshot of the mapping table ordered by domain.
func (c *Classifier) GetAllMappings() []Mapping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Mapping, 0, len(c.mappings))
	for _, m := range c.mappings {
		m.TopicIDs = append([]int(nil), m.TopicIDs...)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// GetDomainsForTopic returns every mapped domain that names the topic id,
// ordered alphabetically.
func (c *Classifier) GetDomainsForTopic(id int) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for domain, m := range c.mappings {
		for _, tid := range m.TopicIDs {
			if tid == id {
				out = append(out, domain)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

func zeroResult(host string) Result {
	return Result{
		Domain:          host,
		TopicIDs:        []int{},
		Confidence:      0,
		Source:          SourceKeyword,
		MatchedKeywords: []string{},
	}
}
