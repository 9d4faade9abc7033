package services

import (
	"context"
	"log/slog"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Reconciler owns contribution writes and keeps each milestone's
// CurrentAmount equal to the exact sum of its contributions. It always
// resums the full contribution set instead of adding a delta: a retried or
// half-finished write then repairs itself on the next successful pass.
//
// Reconciliations for the same milestone are serialized through a keyed
// mutex, so two upserts for different months cannot both write a sum that
// misses the other's row.
type Reconciler struct {
	store store.Store
	guard *Guard

	mu    sync.Mutex
	locks map[string]*keyedLock
}

// keyedLock counts its holders and waiters so the reconciler can drop the
// map entry once the last one releases it, keeping the map bounded by the
// number of in-flight reconciliations rather than every milestone ever
// touched.
type keyedLock struct {
	sync.Mutex
	refs int
}

func NewReconciler(s store.Store, guard *Guard) *Reconciler {
	return &Reconciler{
		store: s,
		guard: guard,
		locks: make(map[string]*keyedLock),
	}
}

// Upsert writes the contribution keyed by (milestoneID, monthKey) — a second
// write for the same month overwrites the amount — then rewrites the
// milestone's CurrentAmount from the full contribution set.
//
// If the final write fails the contribution is kept and CurrentAmount is
// stale; retrying the whole call is idempotent and repairs it.
func (r *Reconciler) Upsert(ctx context.Context, userID, milestoneID, monthKey string, amount float64) (core.Contribution, error) {
	contribution := core.Contribution{
		MilestoneID: milestoneID,
		UserID:      userID,
		MonthKey:    monthKey,
		Amount:      amount,
	}
	if err := contribution.Validate(); err != nil {
		return core.Contribution{}, err
	}

	if _, err := r.guard.Milestone(ctx, userID, milestoneID); err != nil {
		return core.Contribution{}, err
	}

	lock := r.lockMilestone(milestoneID)
	defer r.unlockMilestone(milestoneID, lock)

	written, err := r.store.UpsertContribution(ctx, contribution)
	if err != nil {
		return core.Contribution{}, classify("upsert contribution", err)
	}

	if err := r.reconcile(ctx, milestoneID); err != nil {
		return core.Contribution{}, err
	}

	slog.InfoContext(ctx, "Contribution upserted",
		"milestone_id", milestoneID,
		"month_key", monthKey,
		"amount", amount)

	return written, nil
}

// List returns a milestone's contributions, month key descending, after
// checking the milestone belongs to userID.
func (r *Reconciler) List(ctx context.Context, userID, milestoneID string) ([]core.Contribution, error) {
	if _, err := r.guard.Milestone(ctx, userID, milestoneID); err != nil {
		return nil, err
	}
	contributions, err := r.store.ListContributions(ctx, milestoneID)
	if err != nil {
		return nil, classify("list contributions", err)
	}
	return contributions, nil
}

// reconcile re-reads every contribution for the milestone and writes their
// sum as CurrentAmount.
func (r *Reconciler) reconcile(ctx context.Context, milestoneID string) error {
	contributions, err := r.store.ListContributions(ctx, milestoneID)
	if err != nil {
		return classify("list contributions", err)
	}

	var total float64
	for _, c := range contributions {
		total += c.Amount
	}

	if err := r.store.SetMilestoneCurrentAmount(ctx, milestoneID, total); err != nil {
		return classify("set current amount", err)
	}
	return nil
}

func (r *Reconciler) lockMilestone(milestoneID string) *keyedLock {
	r.mu.Lock()
	lock, ok := r.locks[milestoneID]
	if !ok {
		lock = &keyedLock{}
		r.locks[milestoneID] = lock
	}
	lock.refs++
	r.mu.Unlock()

	lock.Lock()
	return lock
}

func (r *Reconciler) unlockMilestone(milestoneID string, lock *keyedLock) {
	lock.Unlock()

	r.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(r.locks, milestoneID)
	}
	r.mu.Unlock()
}
