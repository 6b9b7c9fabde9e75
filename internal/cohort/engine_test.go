package cohort

import (
	"context"
	"testing"
	"time"

	"github.com/privacykit/cohortd/internal/classifier"
	"github.com/privacykit/cohortd/internal/taxonomy"
)

var fixedNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testEngine(t *testing.T) (*Engine, *classifier.Classifier) {
	t.Helper()
	tax, err := taxonomy.NewManager(taxonomy.DefaultSource()).Get(context.Background())
	if err != nil {
		t.Fatalf("loading taxonomy: %v", err)
	}
	cls := classifier.New(tax)
	e := NewEngine(tax, cls)
	e.now = func() time.Time { return fixedNow }
	return e, cls
}

// visitsFor spreads count single-visit records over the given number of
// days ending at fixedNow.
func visitsFor(domain string, count, days int) []DomainVisit {
	visits := make([]DomainVisit, count)
	for i := range visits {
		visits[i] = DomainVisit{
			Domain:     domain,
			Timestamp:  fixedNow.Add(-time.Duration(i*days*24/max(count, 1)) * time.Hour),
			VisitCount: 1,
		}
	}
	return visits
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func TestAssignCohortsEmptyInput(t *testing.T) {
	e, _ := testEngine(t)
	if got := e.AssignCohorts(nil); len(got) != 0 {
		t.Errorf("AssignCohorts(nil) = %v, want empty", got)
	}
	if got := e.AssignCohorts([]DomainVisit{}); len(got) != 0 {
		t.Errorf("AssignCohorts([]) = %v, want empty", got)
	}
}

func TestAssignCohortsBasic(t *testing.T) {
	e, _ := testEngine(t)

	got := e.AssignCohorts(visitsFor("netflix.com", 10, 5))
	if len(got) == 0 {
		t.Fatal("expected at least one cohort")
	}
	if len(got) > MaxCohorts {
		t.Errorf("got %d cohorts, want at most %d", len(got), MaxCohorts)
	}

	foundMovies := false
	for _, a := range got {
		if a.TopicID == taxonomy.TopicMoviesTV {
			foundMovies = true
		}
		if !a.AssignedDate.Equal(fixedNow) {
			t.Errorf("AssignedDate = %v, want %v", a.AssignedDate, fixedNow)
		}
		if !a.ExpiryDate.Equal(a.AssignedDate.Add(AssignmentTTL)) {
			t.Errorf("ExpiryDate = %v, want assigned + 21d", a.ExpiryDate)
		}
		if a.TopicName == "" {
			t.Errorf("cohort %d has empty topic name", a.TopicID)
		}
	}
	if !foundMovies {
		t.Errorf("cohorts %v should include Movies & TV", got)
	}

	// The engine now holds the same set.
	current := e.GetCurrentCohorts()
	if len(current) != len(got) {
		t.Errorf("current set has %d entries, want %d", len(current), len(got))
	}
}

func TestAssignCohortsMinVisits(t *testing.T) {
	e, _ := testEngine(t)

	if got := e.AssignCohorts(visitsFor("netflix.com", MinVisits-1, 3)); len(got) != 0 {
		t.Errorf("domain below MinVisits produced cohorts: %v", got)
	}
	if got := e.AssignCohorts(visitsFor("netflix.com", MinVisits, 3)); len(got) == 0 {
		t.Error("domain at MinVisits should produce cohorts")
	}
}

func TestAssignCohortsNeverSensitive(t *testing.T) {
	e, cls := testEngine(t)
	ctx := context.Background()

	if err := cls.AddMapping(ctx, "healthsite.com", []int{taxonomy.TopicHealth, taxonomy.TopicMedicalConditions}, 0.95); err != nil {
		t.Fatalf("AddMapping: %v", err)
	}

	got := e.AssignCohorts(visitsFor("healthsite.com", 20, 5))
	for _, a := range got {
		if a.TopicID == taxonomy.TopicHealth || a.TopicID == taxonomy.TopicMedicalConditions {
			t.Errorf("sensitive topic %d assigned as cohort", a.TopicID)
		}
	}
	if len(got) != 0 {
		t.Errorf("domain mapping only to sensitive topics should yield nothing, got %v", got)
	}
}

func TestAssignCohortsCapped(t *testing.T) {
	e, cls := testEngine(t)
	ctx := context.Background()

	domains := map[string]int{
		"a.com": taxonomy.TopicNews,
		"b.com": taxonomy.TopicShopping,
		"c.com": taxonomy.TopicSports,
		"d.com": taxonomy.TopicTravel,
		"e.com": taxonomy.TopicMusic,
		"f.com": taxonomy.TopicFoodDrink,
		"g.com": taxonomy.TopicEducation,
	}
	var visits []DomainVisit
	for domain, topic := range domains {
		if err := cls.AddMapping(ctx, domain, []int{topic}, 0.9); err != nil {
			t.Fatalf("AddMapping(%s): %v", domain, err)
		}
		visits = append(visits, visitsFor(domain, 5, 3)...)
	}

	got := e.AssignCohorts(visits)
	if len(got) != MaxCohorts {
		t.Errorf("got %d cohorts, want exactly %d", len(got), MaxCohorts)
	}
}

func TestAssignCohortsIgnoresMalformedVisits(t *testing.T) {
	e, _ := testEngine(t)

	visits := []DomainVisit{
		{Domain: "", Timestamp: fixedNow, VisitCount: 5},
		{Domain: "netflix.com", Timestamp: fixedNow, VisitCount: 0},
		{Domain: "netflix.com", Timestamp: fixedNow, VisitCount: -3},
		{Domain: "netflix.com", Timestamp: fixedNow.Add(48 * time.Hour), VisitCount: 10},
	}
	if got := e.AssignCohorts(visits); len(got) != 0 {
		t.Errorf("malformed visits produced cohorts: %v", got)
	}
}

func TestFrequencyMonotonicity(t *testing.T) {
	base := visitsFor("espn.com", 4, 3)
	extra := append(append([]DomainVisit(nil), base...), visitsFor("espn.com", 6, 3)...)
	competitor := visitsFor("booking.com", 8, 3)

	e1, _ := testEngine(t)
	first := e1.AssignCohorts(append(append([]DomainVisit(nil), base...), competitor...))

	e2, _ := testEngine(t)
	second := e2.AssignCohorts(append(append([]DomainVisit(nil), extra...), competitor...))

	rank := func(list []Assignment, topic int) int {
		for i, a := range list {
			if a.TopicID == topic {
				return i
			}
		}
		return len(list)
	}

	if rank(second, taxonomy.TopicSports) > rank(first, taxonomy.TopicSports) {
		t.Errorf("adding visits demoted the sports cohort: %d -> %d",
			rank(first, taxonomy.TopicSports), rank(second, taxonomy.TopicSports))
	}
}

func TestAssignReplacesCurrentSet(t *testing.T) {
	e, _ := testEngine(t)

	e.AssignCohorts(visitsFor("netflix.com", 10, 5))
	if len(e.GetCurrentCohorts()) == 0 {
		t.Fatal("first assignment should populate the set")
	}

	e.AssignCohorts(visitsFor("espn.com", 10, 5))
	current := e.GetCurrentCohorts()
	for _, a := range current {
		if a.TopicID == taxonomy.TopicMoviesTV {
			t.Error("stale cohort survived a full recompute")
		}
	}
}

func TestGetCohortsForSharing(t *testing.T) {
	e, _ := testEngine(t)

	// Five cohorts with staggered assignment dates.
	e.mu.Lock()
	e.current = []Assignment{
		{TopicID: 1, Confidence: 0.2, AssignedDate: fixedNow.Add(-4 * 24 * time.Hour)},
		{TopicID: 2, Confidence: 0.9, AssignedDate: fixedNow.Add(-3 * 24 * time.Hour)},
		{TopicID: 3, Confidence: 0.5, AssignedDate: fixedNow.Add(-2 * 24 * time.Hour)},
		{TopicID: 4, Confidence: 0.1, AssignedDate: fixedNow.Add(-1 * 24 * time.Hour)},
		{TopicID: 5, Confidence: 0.99, AssignedDate: fixedNow.Add(-5 * 24 * time.Hour)},
	}
	e.mu.Unlock()

	shared := e.GetCohortsForSharing()
	if len(shared) != SharedCohorts {
		t.Fatalf("shared %d cohorts, want %d", len(shared), SharedCohorts)
	}
	// Most recently assigned first, confidence ignored.
	want := []int{4, 3, 2}
	for i, id := range want {
		if shared[i].TopicID != id {
			t.Errorf("shared[%d].TopicID = %d, want %d", i, shared[i].TopicID, id)
		}
	}
}

func TestSharingCopyIsDefensive(t *testing.T) {
	e, _ := testEngine(t)
	e.AssignCohorts(visitsFor("netflix.com", 10, 5))

	got := e.GetCurrentCohorts()
	if len(got) == 0 {
		t.Fatal("expected cohorts")
	}
	got[0].TopicID = -1
	if e.GetCurrentCohorts()[0].TopicID == -1 {
		t.Error("mutating the returned slice changed engine state")
	}
}

func TestUpdateWeeklyCohorts(t *testing.T) {
	e, _ := testEngine(t)

	old := fixedNow.Add(-22 * 24 * time.Hour)
	recent := fixedNow.Add(-10 * 24 * time.Hour)
	e.mu.Lock()
	e.current = []Assignment{
		{TopicID: 1, AssignedDate: old, ExpiryDate: old.Add(AssignmentTTL)},
		{TopicID: 2, AssignedDate: recent, ExpiryDate: recent.Add(AssignmentTTL)},
	}
	e.mu.Unlock()

	got := e.UpdateWeeklyCohorts()
	if len(got) != 1 {
		t.Fatalf("got %d cohorts after rotation, want 1", len(got))
	}
	if got[0].TopicID != 2 {
		t.Errorf("survivor = %d, want 2", got[0].TopicID)
	}
	if !got[0].ExpiryDate.Equal(recent.Add(AssignmentTTL)) {
		t.Errorf("ExpiryDate = %v, want assigned + 21d", got[0].ExpiryDate)
	}
}

func TestUpdateWeeklyCohortsCooldown(t *testing.T) {
	e, _ := testEngine(t)

	now := fixedNow
	e.now = func() time.Time { return now }

	e.UpdateWeeklyCohorts()

	// Plant an over-age assignment, then call again inside the cooldown.
	e.mu.Lock()
	stale := now.Add(-30 * 24 * time.Hour)
	e.current = []Assignment{{TopicID: 1, AssignedDate: stale}}
	e.mu.Unlock()

	now = now.Add(3 * 24 * time.Hour)
	if got := e.UpdateWeeklyCohorts(); len(got) != 1 {
		t.Errorf("call inside cooldown should be a no-op, got %v", got)
	}

	now = now.Add(5 * 24 * time.Hour)
	if got := e.UpdateWeeklyCohorts(); len(got) != 0 {
		t.Errorf("call after cooldown should rotate, got %v", got)
	}
}
