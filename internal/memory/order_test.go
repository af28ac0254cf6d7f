package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dailywork/dailywork-server/internal/domain/order"
)

func seedOrder(t *testing.T, repo *OrderRepository, id string, status order.Status) *order.Order {
	t.Helper()

	o := &order.Order{
		ID:            id,
		UserID:        "user-1",
		ServiceID:     "1",
		ServiceName:   "Cuci Baju",
		Address:       "Jl. Sudirman 12",
		ScheduledDate: "2026-03-15",
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestOrderRepositoryGet(t *testing.T) {
	repo := NewOrderRepository()
	seedOrder(t, repo, "o1", order.StatusPending)

	got, err := repo.Get(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, order.StatusPending, got.Status)

	_, err = repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderRepositoryReturnsCopies(t *testing.T) {
	repo := NewOrderRepository()
	seedOrder(t, repo, "o1", order.StatusPending)

	got, err := repo.Get(context.Background(), "o1")
	require.NoError(t, err)
	got.Status = order.StatusCancelled

	again, err := repo.Get(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, order.StatusPending, again.Status)
}

func TestUpdateStatusGuard(t *testing.T) {
	repo := NewOrderRepository()
	seedOrder(t, repo, "o1", order.StatusPending)
	ctx := context.Background()

	mitraID := "mitra-1"
	got, err := repo.UpdateStatus(ctx, "o1", order.StatusPending, order.StatusPatch{
		Status:  order.StatusAccepted,
		MitraID: &mitraID,
	})
	require.NoError(t, err)
	require.Equal(t, order.StatusAccepted, got.Status)
	require.Equal(t, mitraID, got.MitraID)

	// Stale expectation leaves the record untouched.
	other := "mitra-2"
	_, err = repo.UpdateStatus(ctx, "o1", order.StatusPending, order.StatusPatch{
		Status:  order.StatusAccepted,
		MitraID: &other,
	})
	require.ErrorIs(t, err, order.ErrInvalidState)

	got, err = repo.Get(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, mitraID, got.MitraID)

	_, err = repo.UpdateStatus(ctx, "missing", order.StatusPending, order.StatusPatch{Status: order.StatusCancelled})
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	repo := NewOrderRepository()
	seedOrder(t, repo, "o1", order.StatusPending)
	ctx := context.Background()

	const contenders = 32

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []string
	)
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		mitraID := fmt.Sprintf("mitra-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := repo.UpdateStatus(ctx, "o1", order.StatusPending, order.StatusPatch{
				Status:  order.StatusAccepted,
				MitraID: &mitraID,
			})
			if err == nil {
				mu.Lock()
				wins = append(wins, mitraID)
				mu.Unlock()
			} else {
				require.ErrorIs(t, err, order.ErrInvalidState)
			}
		}()
	}

	close(start)
	wg.Wait()

	require.Len(t, wins, 1)

	got, err := repo.Get(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, order.StatusAccepted, got.Status)
	require.Equal(t, wins[0], got.MitraID)
}

func TestListPendingExcludesBound(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	seedOrder(t, repo, "o1", order.StatusPending)
	seedOrder(t, repo, "o2", order.StatusPending)

	mitraID := "mitra-1"
	_, err := repo.UpdateStatus(ctx, "o2", order.StatusPending, order.StatusPatch{
		Status:  order.StatusAccepted,
		MitraID: &mitraID,
	})
	require.NoError(t, err)

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "o1", pending[0].ID)
}

func TestListCompletedForUserMonthFilter(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	mk := func(id string, created time.Time, status order.Status) {
		require.NoError(t, repo.Create(ctx, &order.Order{
			ID:        id,
			UserID:    "user-1",
			Status:    status,
			CreatedAt: created,
		}))
	}
	mk("march", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), order.StatusCompleted)
	mk("april", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), order.StatusCompleted)
	mk("march-pending", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), order.StatusPending)

	all, err := repo.ListCompletedForUser(ctx, "user-1", order.CompletedFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	march, err := repo.ListCompletedForUser(ctx, "user-1", order.CompletedFilter{YearMonth: "2026-03"})
	require.NoError(t, err)
	require.Len(t, march, 1)
	require.Equal(t, "march", march[0].ID)

	// The filter is an exact "2006-01" match, not a prefix: "2026-1" must not
	// sweep in October through December.
	mk("october", time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), order.StatusCompleted)
	none, err := repo.ListCompletedForUser(ctx, "user-1", order.CompletedFilter{YearMonth: "2026-1"})
	require.NoError(t, err)
	require.Empty(t, none)

	october, err := repo.ListCompletedForUser(ctx, "user-1", order.CompletedFilter{YearMonth: "2026-10"})
	require.NoError(t, err)
	require.Len(t, october, 1)
	require.Equal(t, "october", october[0].ID)
}

func TestListAll(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	seedOrder(t, repo, "o1", order.StatusPending)
	seedOrder(t, repo, "o2", order.StatusCompleted)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestListForUserNewestFirst(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Create(ctx, &order.Order{
			ID:        id,
			UserID:    "user-1",
			Status:    order.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := repo.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "new", got[0].ID)
	require.Equal(t, "old", got[2].ID)
}
