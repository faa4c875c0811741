package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mise-server/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore_RecordAndSummarize(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	executions := []Execution{
		{Surface: "link", Model: "chat-proxy", Outcome: OutcomeSuccess, LatencyMS: 1200},
		{Surface: "link", Model: "chat-proxy", Outcome: OutcomeSuccess, LatencyMS: 800},
		{Surface: "link", Model: "chat-proxy", Outcome: OutcomeParseFailure, LatencyMS: 900},
		{Surface: "custom", Model: "chat-proxy", Outcome: OutcomeSuccess, LatencyMS: 500},
	}
	for _, e := range executions {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	summaries, err := store.Summarize(ctx, 7)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 surface/outcome groups, got %d", len(summaries))
	}

	// Ordered by surface then outcome: custom/success, link/parse_failure, link/success.
	linkSuccess := summaries[2]
	if linkSuccess.Surface != "link" || linkSuccess.Outcome != OutcomeSuccess {
		t.Fatalf("Unexpected group ordering: %+v", summaries)
	}
	if linkSuccess.Attempts != 2 {
		t.Errorf("Expected 2 link successes, got %d", linkSuccess.Attempts)
	}
	if linkSuccess.AvgMS != 1000 {
		t.Errorf("Expected average latency 1000ms, got %f", linkSuccess.AvgMS)
	}
}

func TestStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := Execution{
		Surface:   "link",
		Outcome:   OutcomeSuccess,
		Timestamp: time.Now().UTC().AddDate(0, 0, -90),
	}
	fresh := Execution{Surface: "link", Outcome: OutcomeSuccess}
	for _, e := range []Execution{old, fresh} {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	deleted, err := store.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 record deleted, got %d", deleted)
	}

	summaries, err := store.Summarize(ctx, 365)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Attempts != 1 {
		t.Errorf("Expected only the fresh record to survive, got %+v", summaries)
	}
}
