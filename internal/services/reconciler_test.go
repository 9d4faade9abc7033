package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

func newReconcilerFixture(t *testing.T) (*Reconciler, *memory.Store, core.Milestone) {
	t.Helper()
	mem := memory.New()
	guard := NewGuard(mem)
	reconciler := NewReconciler(mem, guard)
	m, err := mem.CreateMilestone(context.Background(), core.Milestone{
		UserID: "alice",
		Title:  "House deposit",
		Status: core.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed milestone: %v", err)
	}
	return reconciler, mem, m
}

func currentAmount(t *testing.T, mem *memory.Store, userID, id string) float64 {
	t.Helper()
	m, err := mem.GetMilestone(context.Background(), userID, id)
	if err != nil {
		t.Fatalf("get milestone: %v", err)
	}
	return m.CurrentAmount
}

func TestReconcilerUpsertSumsAllContributions(t *testing.T) {
	ctx := context.Background()
	reconciler, mem, m := newReconcilerFixture(t)

	writes := []struct {
		monthKey string
		amount   float64
		want     float64
	}{
		{"2024-01", 100, 100},
		{"2024-02", 50, 150},
		{"2024-03", 25.5, 175.5},
	}
	for _, w := range writes {
		if _, err := reconciler.Upsert(ctx, "alice", m.ID, w.monthKey, w.amount); err != nil {
			t.Fatalf("upsert %s: %v", w.monthKey, err)
		}
		if got := currentAmount(t, mem, "alice", m.ID); math.Abs(got-w.want) > 1e-9 {
			t.Fatalf("after %s: CurrentAmount = %v, want %v", w.monthKey, got, w.want)
		}
	}
}

func TestReconcilerOverwriteNotAccumulate(t *testing.T) {
	ctx := context.Background()
	reconciler, mem, m := newReconcilerFixture(t)

	if _, err := reconciler.Upsert(ctx, "alice", m.ID, "2024-01", 100); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := reconciler.Upsert(ctx, "alice", m.ID, "2024-01", 50); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if got := currentAmount(t, mem, "alice", m.ID); got != 50 {
		t.Fatalf("CurrentAmount = %v, want 50 (same month overwrites)", got)
	}

	contributions, err := reconciler.List(ctx, "alice", m.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(contributions) != 1 {
		t.Fatalf("got %d contributions, want 1", len(contributions))
	}
}

func TestReconcilerUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	reconciler, mem, m := newReconcilerFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := reconciler.Upsert(ctx, "alice", m.ID, "2024-05", 80); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	if got := currentAmount(t, mem, "alice", m.ID); got != 80 {
		t.Fatalf("CurrentAmount = %v, want 80 after repeated identical upserts", got)
	}
}

func TestReconcilerRejectsBadMonthKey(t *testing.T) {
	ctx := context.Background()
	reconciler, _, m := newReconcilerFixture(t)

	for _, key := range []string{"2024-5", "202405", "", "05-2024"} {
		_, err := reconciler.Upsert(ctx, "alice", m.ID, key, 10)
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("monthKey %q: got %v, want validation error", key, err)
		}
	}
}

func TestReconcilerForeignMilestoneIsNotFound(t *testing.T) {
	ctx := context.Background()
	reconciler, _, m := newReconcilerFixture(t)

	if _, err := reconciler.Upsert(ctx, "bob", m.ID, "2024-01", 10); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign upsert: got %v, want ErrNotFound", err)
	}
	if _, err := reconciler.List(ctx, "bob", m.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign list: got %v, want ErrNotFound", err)
	}
	if _, err := reconciler.Upsert(ctx, "alice", "missing", "2024-01", 10); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing milestone: got %v, want ErrNotFound", err)
	}
}

func TestReconcilerConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	reconciler, mem, m := newReconcilerFixture(t)

	const months = 12
	var wg sync.WaitGroup
	errs := make(chan error, months)
	for i := 0; i < months; i++ {
		wg.Add(1)
		go func(month int) {
			defer wg.Done()
			key := fmt.Sprintf("2024-%02d", month+1)
			if _, err := reconciler.Upsert(ctx, "alice", m.ID, key, 10); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent upsert: %v", err)
	}

	if got := currentAmount(t, mem, "alice", m.ID); got != months*10 {
		t.Fatalf("CurrentAmount = %v, want %v after concurrent upserts", got, months*10)
	}
}

func TestReconcilerReleasesMilestoneLocks(t *testing.T) {
	ctx := context.Background()
	reconciler, mem, m := newReconcilerFixture(t)

	second, err := mem.CreateMilestone(ctx, core.Milestone{
		UserID: "alice",
		Title:  "Car",
		Status: core.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed milestone: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(month int) {
			defer wg.Done()
			key := fmt.Sprintf("2024-%02d", month+1)
			id := m.ID
			if month%2 == 0 {
				id = second.ID
			}
			if _, err := reconciler.Upsert(ctx, "alice", id, key, 10); err != nil {
				t.Errorf("upsert %s: %v", key, err)
			}
		}(i)
	}
	wg.Wait()

	reconciler.mu.Lock()
	held := len(reconciler.locks)
	reconciler.mu.Unlock()
	if held != 0 {
		t.Fatalf("lock map holds %d entries after all upserts finished, want 0", held)
	}
}

// failingAmountStore makes the reconciliation write fail a set number of
// times, to exercise the repair-on-retry behavior.
type failingAmountStore struct {
	store.Store
	failures int
}

func (f *failingAmountStore) SetMilestoneCurrentAmount(ctx context.Context, id string, amount float64) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.Store.SetMilestoneCurrentAmount(ctx, id, amount)
}

func TestReconcilerRetryRepairsStaleAmount(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	failing := &failingAmountStore{Store: mem, failures: 1}
	reconciler := NewReconciler(failing, NewGuard(failing))

	m, err := mem.CreateMilestone(ctx, core.Milestone{UserID: "alice", Title: "Trip", Status: core.StatusActive})
	if err != nil {
		t.Fatalf("seed milestone: %v", err)
	}

	_, err = reconciler.Upsert(ctx, "alice", m.ID, "2024-01", 60)
	if !errors.Is(err, core.ErrStore) {
		t.Fatalf("first upsert: got %v, want store error", err)
	}
	// The contribution landed but CurrentAmount is stale.
	if got := currentAmount(t, mem, "alice", m.ID); got != 0 {
		t.Fatalf("CurrentAmount = %v, want 0 while stale", got)
	}

	// Retrying the same call repairs the derived amount.
	if _, err := reconciler.Upsert(ctx, "alice", m.ID, "2024-01", 60); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := currentAmount(t, mem, "alice", m.ID); got != 60 {
		t.Fatalf("CurrentAmount = %v, want 60 after retry", got)
	}
}
