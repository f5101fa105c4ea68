package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"dime/internal/cache"
	"dime/internal/core"
	"dime/internal/log"
	"dime/internal/storage"
)

// SnapshotStore loads the per-user records the dashboard aggregates.
// *storage.Repository satisfies it.
type SnapshotStore interface {
	ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error)
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	ListRecurringPayments(ctx context.Context, userID int64) ([]core.RecurringPayment, error)
	ListGoals(ctx context.Context, userID int64) ([]core.FinancialGoal, error)
}

// DashboardService builds per-user dashboards from a storage snapshot and
// caches the result until the next write or TTL expiry.
type DashboardService struct {
	store  SnapshotStore
	cache  *cache.LRUCache[core.Dashboard]
	logger *log.Logger
}

func NewDashboardService(store SnapshotStore, c *cache.LRUCache[core.Dashboard], logger *log.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		cache:  c,
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// GetDashboard returns the user's dashboard, serving from cache when a fresh
// entry exists. The four record sets load concurrently.
func (s *DashboardService) GetDashboard(ctx context.Context, userID int64, now time.Time) (core.Dashboard, error) {
	key := cacheKey(userID)
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			s.logger.DebugContext(ctx, "dashboard cache hit", log.FieldUserID, userID)
			return d, nil
		}
	}

	snap, err := s.loadSnapshot(ctx, userID, now)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("load dashboard snapshot: %w", err)
	}

	d := core.BuildDashboard(snap, now)
	if s.cache != nil {
		s.cache.Set(key, d)
	}
	return d, nil
}

// Invalidate drops the user's cached dashboard. Called after any write that
// feeds the aggregation.
func (s *DashboardService) Invalidate(userID int64) {
	if s.cache != nil {
		s.cache.Delete(cacheKey(userID))
	}
}

// loadSnapshot fetches every record set the aggregation reads. The
// transaction load is unwindowed: the recent-transactions view shows a
// user's latest activity however old it is, so the engine must see the full
// history and apply its own per-view windows.
func (s *DashboardService) loadSnapshot(ctx context.Context, userID int64, _ time.Time) (core.Snapshot, error) {
	snap := core.Snapshot{UserID: userID}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Transactions, err = s.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		snap.Categories, err = s.store.ListCategories(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.RecurringPayments, err = s.store.ListRecurringPayments(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Goals, err = s.store.ListGoals(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
