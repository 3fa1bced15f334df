package library

import (
	"context"
	"sync"
	"testing"

	"syncorbit/internal/anchors"
	"syncorbit/internal/arbiter"
	"syncorbit/internal/config"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataRoot = t.TempDir()
	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestScanRecordCoercesCorruptValues(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `INSERT INTO movies
		(movie, decision, best_reference, target_mtime, last_analyzed, state)
		VALUES (?, ?, ?, ?, ?, ?)`,
		"Damaged (2001)", "excellent???", "teletext", "not-a-timestamp", "also-bad", "vanished")
	if err != nil {
		t.Fatalf("insert raw row: %v", err)
	}

	record, err := store.Get(ctx, "Damaged (2001)")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.Decision != anchors.DecisionUnknown {
		t.Fatalf("expected unknown decision, got %q", record.Decision)
	}
	if record.BestReference != arbiter.KindNone {
		t.Fatalf("expected none reference, got %q", record.BestReference)
	}
	if record.TargetMtime != nil || record.LastAnalyzed != nil {
		t.Fatalf("expected nil timestamps, got %+v", record)
	}
	if record.State != StateMissingSubtitles {
		t.Fatalf("expected missing-subtitles fallback, got %q", record.State)
	}

	records, err := store.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List must tolerate corrupt rows: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	var km keyedMutex

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	counter := 0
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			release := km.lock("same-key")
			counter++
			release()
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("expected %d increments, got %d", workers, counter)
	}
	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.entries) != 0 {
		t.Fatalf("expected entry map drained, got %d entries", len(km.entries))
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	var km keyedMutex

	releaseA := km.lock("a")
	done := make(chan struct{})
	go func() {
		release := km.lock("b")
		release()
		close(done)
	}()
	<-done
	releaseA()
}
