package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
)

// Expirer exposes the subset of application functionality the scheduler needs:
// driving the terminal transition and rebuilding the wait structure on start.
type Expirer interface {
	ExpireOrder(ctx context.Context, orderID string) (*model.Order, error)
	ActiveOrders(ctx context.Context) ([]model.Order, error)
}

type entry struct {
	orderID  string
	deadline time.Time
}

type deadlineHeap []entry

func (h deadlineHeap) Len() int           { return len(h) }
func (h deadlineHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h deadlineHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// ExpirationScheduler guarantees that every active order is resolved within a
// bounded time after its deadline. Deadlines live in a min-heap; a single
// dispatcher goroutine pops due entries on each tick and calls ExpireOrder,
// which is safe to invoke redundantly.
type ExpirationScheduler struct {
	tick   time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	deadlines deadlineHeap
	cancelled map[string]struct{}

	wg     sync.WaitGroup
	cancel context.CancelFunc
	runMu  sync.Mutex
}

// New constructs the scheduler with the given dispatcher tick.
func New(tick time.Duration, logger *slog.Logger) *ExpirationScheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &ExpirationScheduler{
		tick:      tick,
		logger:    logger,
		cancelled: make(map[string]struct{}),
	}
}

// Schedule registers an order deadline.
func (s *ExpirationScheduler) Schedule(orderID string, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancelled, orderID)
	heap.Push(&s.deadlines, entry{orderID: orderID, deadline: deadline})
}

// Cancel removes a pending entry. Removal is lazy and best-effort: the
// dispatcher tolerates firing on a cancelled or already-terminal order.
func (s *ExpirationScheduler) Cancel(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled[orderID] = struct{}{}
}

// Start rebuilds the wait structure from persisted active orders, then
// launches the dispatcher. The rebuild happens before Start returns so a
// restarted process never strands an order active forever.
func (s *ExpirationScheduler) Start(ctx context.Context, exp Expirer) error {
	orders, err := exp.ActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("rebuild scheduler state: %w", err)
	}

	s.mu.Lock()
	for _, o := range orders {
		heap.Push(&s.deadlines, entry{orderID: o.ID, deadline: o.Deadline})
	}
	pending := s.deadlines.Len()
	s.mu.Unlock()

	s.logger.Info("expiration scheduler started", slog.Int("pending", pending))

	s.runMu.Lock()
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.dispatch(runCtx, exp)
	return nil
}

// Stop terminates the dispatcher and waits for it to finish.
func (s *ExpirationScheduler) Stop() {
	s.runMu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.runMu.Unlock()

	s.wg.Wait()
}

func (s *ExpirationScheduler) dispatch(ctx context.Context, exp Expirer) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fireDue(ctx, exp)
		}
	}
}

// fireDue pops every entry whose deadline has passed and expires it. The heap
// lock is never held across the ExpireOrder call.
func (s *ExpirationScheduler) fireDue(ctx context.Context, exp Expirer) {
	now := time.Now()

	var due []string
	s.mu.Lock()
	for s.deadlines.Len() > 0 && !s.deadlines[0].deadline.After(now) {
		e := heap.Pop(&s.deadlines).(entry)
		if _, ok := s.cancelled[e.orderID]; ok {
			delete(s.cancelled, e.orderID)
			continue
		}
		due = append(due, e.orderID)
	}
	s.mu.Unlock()

	for _, orderID := range due {
		if _, err := exp.ExpireOrder(ctx, orderID); err != nil {
			if errors.Is(err, domainErrors.ErrOrderNotActive) || errors.Is(err, domainErrors.ErrNotFound) {
				continue
			}
			s.logger.Error("expire order failed",
				slog.String("order", orderID),
				slog.String("error", err.Error()),
			)
			// Retry next tick rather than stranding the order.
			s.Schedule(orderID, now.Add(s.tick))
		}
	}
}
