package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smslease/smslease/internal/domain/model"
)

// AssignCall records one number acquisition.
type AssignCall struct {
	CountryID string
}

// NumberAssignerStub hands out sequential numbers and tracks releases. Every
// assignment is served by the "acme" provider unless AssignFn overrides it.
type NumberAssignerStub struct {
	AssignFn  func(context.Context, string) (*model.NumberAssignment, error)
	ReleaseFn func(context.Context, string) error

	mu       sync.Mutex
	next     int
	Assigns  []AssignCall
	Released []string
}

// Assign returns a unique phone number and external id per call.
func (s *NumberAssignerStub) Assign(ctx context.Context, countryID string) (*model.NumberAssignment, error) {
	if s.AssignFn != nil {
		return s.AssignFn(ctx, countryID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.Assigns = append(s.Assigns, AssignCall{CountryID: countryID})
	return &model.NumberAssignment{
		PhoneNumber: fmt.Sprintf("+1650253%04d", s.next),
		ExternalID:  fmt.Sprintf("ext-%d", s.next),
		Provider:    "acme",
	}, nil
}

// Release records the released external id.
func (s *NumberAssignerStub) Release(ctx context.Context, externalID string) error {
	if s.ReleaseFn != nil {
		return s.ReleaseFn(ctx, externalID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Released = append(s.Released, externalID)
	return nil
}

// ScheduleCall records one deadline registration.
type ScheduleCall struct {
	OrderID  string
	Deadline time.Time
}

// SchedulerStub records deadline bookkeeping calls.
type SchedulerStub struct {
	mu        sync.Mutex
	Scheduled []ScheduleCall
	Cancelled []string
}

// Schedule records the registration.
func (s *SchedulerStub) Schedule(orderID string, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scheduled = append(s.Scheduled, ScheduleCall{OrderID: orderID, Deadline: deadline})
}

// Cancel records the removal.
func (s *SchedulerStub) Cancel(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cancelled = append(s.Cancelled, orderID)
}

// PublisherStub collects published events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []model.Event
}

// Publish appends the event.
func (s *PublisherStub) Publish(event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
}

// Published returns a snapshot of collected events.
func (s *PublisherStub) Published() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.Events))
	copy(out, s.Events)
	return out
}

// ExpireCall records one scheduler-driven expiry attempt.
type ExpireCall struct {
	OrderID string
}

// ExpirerStub drives scheduler tests without real orders.
type ExpirerStub struct {
	ExpireFn func(context.Context, string) (*model.Order, error)
	Active   []model.Order
	ListErr  error

	mu      sync.Mutex
	Expired []ExpireCall
}

// ExpireOrder records the attempt and delegates to the override when set.
func (s *ExpirerStub) ExpireOrder(ctx context.Context, orderID string) (*model.Order, error) {
	s.mu.Lock()
	s.Expired = append(s.Expired, ExpireCall{OrderID: orderID})
	s.mu.Unlock()
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusExpired, Refunded: true}, nil
}

// ActiveOrders returns the configured rebuild set.
func (s *ExpirerStub) ActiveOrders(ctx context.Context) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.Active, nil
}

// ExpiredCount reports how many expiry attempts were recorded.
func (s *ExpirerStub) ExpiredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Expired)
}
