package taxonomy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func loadDefault(t *testing.T) *Taxonomy {
	t.Helper()
	tx, err := Load(defaultTopics)
	if err != nil {
		t.Fatalf("loading default taxonomy: %v", err)
	}
	return tx
}

func TestLoadRejectsDuplicateID(t *testing.T) {
	_, err := Load([]Topic{
		{ID: 1, Name: "A", Level: 0},
		{ID: 1, Name: "B", Level: 0},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != "duplicate id" {
		t.Errorf("Reason = %q, want %q", verr.Reason, "duplicate id")
	}
}

func TestLoadRejectsDanglingParent(t *testing.T) {
	_, err := Load([]Topic{
		{ID: 1, Name: "A", Level: 0},
		{ID: 2, Name: "B", ParentID: intp(99), Level: 1},
	})
	if err == nil {
		t.Fatal("expected error for dangling parent reference")
	}
}

func TestLoadRejectsLevelInconsistency(t *testing.T) {
	cases := []struct {
		name   string
		topics []Topic
	}{
		{"child level skips", []Topic{
			{ID: 1, Name: "A", Level: 0},
			{ID: 2, Name: "B", ParentID: intp(1), Level: 2},
		}},
		{"root with nonzero level", []Topic{
			{ID: 1, Name: "A", Level: 1},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(tc.topics); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadRejectsMissingFields(t *testing.T) {
	if _, err := Load([]Topic{{ID: 0, Name: "A", Level: 0}}); err == nil {
		t.Error("expected error for non-positive id")
	}
	if _, err := Load([]Topic{{ID: 1, Name: "", Level: 0}}); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := Load([]Topic{{ID: 1, Name: "A", Level: -1}}); err == nil {
		t.Error("expected error for negative level")
	}
}

func TestEveryTopicReachesLevelZeroRoot(t *testing.T) {
	tx := loadDefault(t)
	for _, root := range tx.GetRoots() {
		if root.Level != 0 {
			t.Errorf("root %d has level %d", root.ID, root.Level)
		}
	}
	for id := 1; id <= tx.Len(); id++ {
		topic, ok := tx.GetByID(id)
		if !ok {
			continue
		}
		ancestors := tx.GetAncestors(topic.ID)
		if topic.ParentID == nil {
			if len(ancestors) != 0 {
				t.Errorf("root %d has ancestors %v", topic.ID, ancestors)
			}
			continue
		}
		last := ancestors[len(ancestors)-1]
		if last.Level != 0 {
			t.Errorf("topic %d ancestor chain ends at level %d, want 0", topic.ID, last.Level)
		}
	}
}

func TestLookups(t *testing.T) {
	tx := loadDefault(t)

	topic, ok := tx.GetByName("movies & tv")
	if !ok {
		t.Fatal("GetByName(movies & tv) not found")
	}
	if topic.ID != TopicMoviesTV {
		t.Errorf("ID = %d, want %d", topic.ID, TopicMoviesTV)
	}

	parent, ok := tx.GetParent(TopicMoviesTV)
	if !ok || parent.ID != TopicArtsEntertainment {
		t.Errorf("GetParent = %v, %v; want Arts & Entertainment", parent, ok)
	}

	children := tx.GetChildren(TopicArtsEntertainment)
	if len(children) != 3 {
		t.Fatalf("Arts & Entertainment children = %d, want 3", len(children))
	}
	// Ordered by id.
	if children[0].ID != TopicMoviesTV || children[1].ID != TopicMusic || children[2].ID != TopicBooks {
		t.Errorf("children out of order: %v", children)
	}
}

func TestGetDescendantsPreOrder(t *testing.T) {
	tx, err := Load([]Topic{
		{ID: 1, Name: "Root", Level: 0},
		{ID: 2, Name: "A", ParentID: intp(1), Level: 1},
		{ID: 3, Name: "B", ParentID: intp(1), Level: 1},
		{ID: 4, Name: "A1", ParentID: intp(2), Level: 2},
		{ID: 5, Name: "A2", ParentID: intp(2), Level: 2},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := tx.GetDescendants(1)
	want := []int{2, 4, 5, 3}
	if len(got) != len(want) {
		t.Fatalf("descendants = %d entries, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("descendants[%d] = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestSearch(t *testing.T) {
	tx := loadDefault(t)

	results := tx.Search("stream")
	if len(results) == 0 {
		t.Fatal("Search(stream) returned nothing")
	}
	found := false
	for _, r := range results {
		if r.ID == TopicMoviesTV {
			found = true
		}
	}
	if !found {
		t.Error("Search(stream) should match Movies & TV via description")
	}

	if got := tx.Search(""); got != nil {
		t.Errorf("Search(\"\") = %v, want nil", got)
	}
}

func TestSensitivity(t *testing.T) {
	tx := loadDefault(t)

	if !tx.IsSensitive(TopicHealth) {
		t.Error("Health should be sensitive")
	}
	if tx.IsSensitive(TopicSports) {
		t.Error("Sports should not be sensitive")
	}
	if !tx.IsSensitive(9999) {
		t.Error("unknown topics should be treated as sensitive")
	}

	for _, topic := range tx.GetNonSensitiveTopics() {
		if topic.IsSensitive {
			t.Errorf("GetNonSensitiveTopics returned sensitive topic %d", topic.ID)
		}
	}
}

func TestManagerMemoizesAndClears(t *testing.T) {
	calls := 0
	src := sourceFunc(func(ctx context.Context) ([]Topic, error) {
		calls++
		return defaultTopics, nil
	})
	m := NewManager(src)

	if _, err := m.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := m.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls != 1 {
		t.Errorf("source consulted %d times, want 1", calls)
	}

	m.ClearCache()
	if _, err := m.Get(context.Background()); err != nil {
		t.Fatalf("Get after ClearCache: %v", err)
	}
	if calls != 2 {
		t.Errorf("source consulted %d times after ClearCache, want 2", calls)
	}
}

type sourceFunc func(ctx context.Context) ([]Topic, error)

func (f sourceFunc) Topics(ctx context.Context) ([]Topic, error) { return f(ctx) }

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yml")
	data := []byte(`topics:
  - id: 1
    name: Root
    level: 0
  - id: 2
    name: Child
    parent_id: 1
    level: 1
    sensitive: true
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing topics file: %v", err)
	}

	topics, err := FileSource{Path: path}.Topics(context.Background())
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2", len(topics))
	}
	if !topics[1].IsSensitive {
		t.Error("child topic should be sensitive")
	}

	tx, err := Load(topics)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tx.Len() != 2 {
		t.Errorf("Len = %d, want 2", tx.Len())
	}
}
