package store

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/verte-zerg/sprout/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "sprout.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestGetSetLastWriteWins(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := st.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != "two" {
		t.Fatalf("expected two, got %q", value)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprout.db")
	ctx := context.Background()
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Set(ctx, "sprout-timer-sprouts", "3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()
	value, ok, err := reopened.Get(ctx, "sprout-timer-sprouts")
	if err != nil || !ok || value != "3" {
		t.Fatalf("expected persisted 3, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestListCompletionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		mode := model.ModeFocus
		if i%2 == 1 {
			mode = model.ModeBreak
		}
		if _, err := st.InsertCompletion(ctx, model.Completion{
			Mode:        mode,
			Seconds:     1200,
			CompletedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := st.ListCompletions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 completions, got %d", len(all))
	}
	if !all[0].CompletedAt.Equal(base) || all[0].Mode != model.ModeFocus {
		t.Fatalf("unexpected first completion: %+v", all[0])
	}

	since := base.Add(36 * time.Hour)
	recent, err := st.ListCompletions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 completions since filter, got %d", len(recent))
	}

	last, err := st.ListCompletions(ctx, model.StatsConfig{Last: 1})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 1 || last[0].ID != all[3].ID {
		t.Fatalf("expected the newest completion, got %+v", last)
	}

	focus, err := st.CountCompletions(ctx, model.ModeFocus)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if focus != 2 {
		t.Fatalf("expected 2 focus completions, got %d", focus)
	}
}

func TestConcurrentStoresWaitForLocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprout.db")
	ctx := context.Background()
	writer, err := Open(path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	defer func() {
		_ = writer.Close()
	}()

	stop := make(chan struct{})
	writerErr := make(chan error, 1)
	go func() {
		for i := 0; ; i++ {
			select {
			case <-stop:
				writerErr <- nil
				return
			default:
			}
			if err := writer.Set(ctx, "sprout-timer-session", strconv.Itoa(i)); err != nil {
				writerErr <- err
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	for i := 0; i < 20; i++ {
		reader, err := Open(path)
		if err != nil {
			close(stop)
			t.Fatalf("open reader %d: %v", i, err)
		}
		_, _, getErr := reader.Get(ctx, "sprout-timer-session")
		_, insertErr := reader.InsertCompletion(ctx, model.Completion{
			Mode:        model.ModeBreak,
			Seconds:     300,
			CompletedAt: time.Now(),
		})
		closeErr := reader.Close()
		if getErr != nil || insertErr != nil || closeErr != nil {
			close(stop)
			t.Fatalf("reader %d: get=%v insert=%v close=%v", i, getErr, insertErr, closeErr)
		}
	}
	close(stop)
	if err := <-writerErr; err != nil {
		t.Fatalf("writer: %v", err)
	}
}
