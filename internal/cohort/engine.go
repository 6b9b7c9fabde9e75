package cohort

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/privacykit/cohortd/internal/classifier"
	"github.com/privacykit/cohortd/internal/taxonomy"
)

// Engine assigns interest cohorts from domain-visit records. One engine
// instance owns one device's current cohort set; the internal mutex
// serializes AssignCohorts against the weekly maintenance pass.
type Engine struct {
	tax *taxonomy.Taxonomy
	cls *classifier.Classifier
	now func() time.Time

	mu         sync.Mutex
	current    []Assignment
	lastUpdate time.Time
}

// NewEngine creates an Engine over the given taxonomy and classifier.
func NewEngine(tax *taxonomy.Taxonomy, cls *classifier.Classifier) *Engine {
	return &Engine{tax: tax, cls: cls, now: time.Now}
}

// AssignCohorts recomputes the full cohort set from the given visits and
// replaces the current set with the result. Malformed visits are filtered;
// empty input yields an empty set, never an error.
func (e *Engine) AssignCohorts(visits []DomainVisit) []Assignment {
	now := e.now().UTC()
	stats := e.analyzeVisits(visits, now)

	scores := make(map[int]*topicScore)
	for domain, ds := range stats {
		if ds.totalVisits < MinVisits {
			continue
		}

		res, err := e.cls.Classify(domain)
		if err != nil || len(res.TopicIDs) == 0 || res.Confidence <= 0 {
			continue
		}

		daysSinceFirst := math.Max(1, now.Sub(ds.firstVisit).Hours()/24)
		daysSinceLast := now.Sub(ds.lastVisit).Hours() / 24
		frequency := float64(ds.totalVisits) / daysSinceFirst
		recency := math.Max(0, 1-daysSinceLast/30)

		domainScore := (FrequencyWeight*math.Log1p(frequency) + RecencyWeight*recency) * res.Confidence
		perTopic := domainScore / float64(len(res.TopicIDs))

		for _, id := range res.TopicIDs {
			ts := scores[id]
			if ts == nil {
				ts = &topicScore{domains: make(map[string]struct{})}
				scores[id] = ts
			}
			ts.score += perTopic
			if res.Confidence > ts.maxConfidence {
				ts.maxConfidence = res.Confidence
			}
			ts.domains[domain] = struct{}{}
			ts.totalVisits += ds.totalVisits
		}
	}

	// Sensitive topics never become cohorts.
	for id := range scores {
		if e.tax.IsSensitive(id) {
			delete(scores, id)
		}
	}

	type ranked struct {
		id int
		ts *topicScore
	}
	order := make([]ranked, 0, len(scores))
	for id, ts := range scores {
		order = append(order, ranked{id: id, ts: ts})
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].ts.score != order[j].ts.score {
			return order[i].ts.score > order[j].ts.score
		}
		return order[i].id < order[j].id
	})
	if len(order) > MaxCohorts {
		order = order[:MaxCohorts]
	}

	assignments := make([]Assignment, 0, len(order))
	for _, r := range order {
		topic, _ := e.tax.GetByID(r.id)
		assignments = append(assignments, Assignment{
			TopicID:      r.id,
			TopicName:    topic.Name,
			Confidence:   r.ts.maxConfidence,
			AssignedDate: now,
			ExpiryDate:   now.Add(AssignmentTTL),
		})
	}

	e.mu.Lock()
	e.current = assignments
	e.mu.Unlock()

	return append([]Assignment(nil), assignments...)
}

// analyzeVisits groups visits by normalized domain. Visits with an empty
// domain, a non-positive count, or a future timestamp are dropped.
func (e *Engine) analyzeVisits(visits []DomainVisit, now time.Time) map[string]*domainStats {
	stats := make(map[string]*domainStats)
	for _, v := range visits {
		domain := classifier.Normalize(v.Domain)
		if domain == "" || v.VisitCount <= 0 {
			continue
		}
		ts := v.Timestamp.UTC()
		if ts.After(now) {
			continue
		}

		ds := stats[domain]
		if ds == nil {
			ds = &domainStats{firstVisit: ts, lastVisit: ts}
			stats[domain] = ds
		}
		ds.totalVisits += v.VisitCount
		if now.Sub(ts) <= 7*24*time.Hour {
			ds.recentVisits += v.VisitCount
		}
		if ts.Before(ds.firstVisit) {
			ds.firstVisit = ts
		}
		if ts.After(ds.lastVisit) {
			ds.lastVisit = ts
		}
	}
	return stats
}

// UpdateWeeklyCohorts drops assignments older than the retention window
// and renews the expiry of survivors. It does not rescore. Calls inside
// the seven-day cooldown are a no-op.
func (e *Engine) UpdateWeeklyCohorts() []Assignment {
	now := e.now().UTC()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.lastUpdate.IsZero() && now.Sub(e.lastUpdate) < updateCooldown {
		return append([]Assignment(nil), e.current...)
	}
	e.lastUpdate = now

	kept := e.current[:0]
	for _, a := range e.current {
		if now.Sub(a.AssignedDate) > AssignmentTTL {
			continue
		}
		a.ExpiryDate = a.AssignedDate.Add(AssignmentTTL)
		kept = append(kept, a)
	}
	e.current = kept

	return append([]Assignment(nil), e.current...)
}

// GetCurrentCohorts returns a copy of the current cohort set.
func (e *Engine) GetCurrentCohorts() []Assignment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Assignment(nil), e.current...)
}

// GetCohortsForSharing returns at most SharedCohorts assignments, most
// recently assigned first. Confidence does not participate in the order;
// disclosure reveals recency only.
func (e *Engine) GetCohortsForSharing() []Assignment {
	e.mu.Lock()
	out := append([]Assignment(nil), e.current...)
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].AssignedDate.Equal(out[j].AssignedDate) {
			return out[i].AssignedDate.After(out[j].AssignedDate)
		}
		return out[i].TopicID < out[j].TopicID
	})
	if len(out) > SharedCohorts {
		out = out[:SharedCohorts]
	}
	return out
}
