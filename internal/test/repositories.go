package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
)

// OrderRepositoryStub stores orders in-memory and enforces the terminal
// transition CAS the same way the real storage does. Wire Balances to mirror
// the storage behavior of crediting the refund inside the Expire transaction.
type OrderRepositoryStub struct {
	CreateFn   func(context.Context, *model.Order) error
	CompleteFn func(context.Context, string, *model.Message) (*model.Order, error)
	ExpireFn   func(context.Context, string) (*model.Order, error)

	Balances *BalanceRepositoryStub

	mu       sync.Mutex
	Orders   map[string]*model.Order
	Messages map[string][]model.Message
}

// NewOrderRepositoryStub constructs a stub with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:   make(map[string]*model.Order),
		Messages: make(map[string][]model.Message),
	}
}

// Create stores the order, rejecting duplicates.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Orders[order.ID]; ok {
		return domainErrors.ErrAlreadyExists
	}
	copied := *order
	s.Orders[order.ID] = &copied
	return nil
}

// GetByID fetches a stored order or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

// ListByUser returns the user's orders in insertion order.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

// ListActive returns every active order.
func (s *OrderRepositoryStub) ListActive(ctx context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.Active() {
			out = append(out, *o)
		}
	}
	return out, nil
}

// FindActiveByExternalID returns active orders carrying the external id and
// served by the provider; provider-less orders match any provider.
func (s *OrderRepositoryStub) FindActiveByExternalID(ctx context.Context, providerName, externalID string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.Active() && o.ExternalID == externalID && (o.Provider == "" || o.Provider == providerName) {
			out = append(out, *o)
		}
	}
	return out, nil
}

// FindActiveByPhone returns active orders assigned the phone number and
// served by the provider; provider-less orders match any provider.
func (s *OrderRepositoryStub) FindActiveByPhone(ctx context.Context, providerName, phoneNumber string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.Active() && o.PhoneNumber == phoneNumber && (o.Provider == "" || o.Provider == providerName) {
			out = append(out, *o)
		}
	}
	return out, nil
}

// Complete applies the active->completed transition and stores the message.
func (s *OrderRepositoryStub) Complete(ctx context.Context, orderID string, message *model.Message) (*model.Order, error) {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, orderID, message)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !order.Active() {
		return nil, domainErrors.ErrOrderNotActive
	}
	now := time.Now().UTC()
	order.Status = model.OrderStatusCompleted
	order.CompletedAt = &now
	s.Messages[orderID] = append(s.Messages[orderID], *message)
	copied := *order
	return &copied, nil
}

// Expire applies the active->expired transition with the refunded marker and,
// when Balances is wired, credits the price back the way the real storage does
// inside the expiry transaction.
func (s *OrderRepositoryStub) Expire(ctx context.Context, orderID string) (*model.Order, error) {
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !order.Active() {
		return nil, domainErrors.ErrOrderNotActive
	}
	order.Status = model.OrderStatusExpired
	order.Refunded = true
	if s.Balances != nil {
		if err := s.Balances.Credit(ctx, order.UserID, order.Price, order.ID); err != nil {
			return nil, err
		}
	}
	copied := *order
	return &copied, nil
}

// MessageRepositoryStub serves messages from a configured map.
type MessageRepositoryStub struct {
	ListFn func(context.Context, string) ([]model.Message, error)
	Items  map[string][]model.Message
}

// ListByOrder returns configured messages.
func (s *MessageRepositoryStub) ListByOrder(ctx context.Context, orderID string) ([]model.Message, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, orderID)
	}
	return s.Items[orderID], nil
}

// CreditCall records one balance credit.
type CreditCall struct {
	UserID  int64
	Amount  int64
	OrderID string
}

// DebitCall records one balance debit.
type DebitCall struct {
	UserID  int64
	Amount  int64
	OrderID string
}

// BalanceRepositoryStub keeps balances in-memory with the non-negative
// invariant of the real storage.
type BalanceRepositoryStub struct {
	TryDebitFn func(context.Context, int64, int64, string) error
	CreditFn   func(context.Context, int64, int64, string) error

	mu       sync.Mutex
	Balances map[int64]int64
	Ledger   []model.LedgerEntry
	Debits   []DebitCall
	Credits  []CreditCall
}

// NewBalanceRepositoryStub constructs a stub with initialized state.
func NewBalanceRepositoryStub() *BalanceRepositoryStub {
	return &BalanceRepositoryStub{Balances: make(map[int64]int64)}
}

// Amount returns the current balance, zero for unknown users.
func (s *BalanceRepositoryStub) Amount(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Balances[userID], nil
}

// TryDebit withdraws when funds suffice, recording the call.
func (s *BalanceRepositoryStub) TryDebit(ctx context.Context, userID int64, amount int64, orderID string) error {
	if s.TryDebitFn != nil {
		return s.TryDebitFn(ctx, userID, amount, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Balances[userID] < amount {
		return domainErrors.ErrInsufficientBalance
	}
	s.Balances[userID] -= amount
	s.Debits = append(s.Debits, DebitCall{UserID: userID, Amount: amount, OrderID: orderID})
	s.Ledger = append(s.Ledger, model.LedgerEntry{UserID: userID, OrderID: orderID, Amount: -amount})
	return nil
}

// Credit adds funds unconditionally, recording the call.
func (s *BalanceRepositoryStub) Credit(ctx context.Context, userID int64, amount int64, orderID string) error {
	if s.CreditFn != nil {
		return s.CreditFn(ctx, userID, amount, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Balances[userID] += amount
	s.Credits = append(s.Credits, CreditCall{UserID: userID, Amount: amount, OrderID: orderID})
	s.Ledger = append(s.Ledger, model.LedgerEntry{UserID: userID, OrderID: orderID, Amount: amount})
	return nil
}

// Entries returns recorded ledger entries for the user.
func (s *BalanceRepositoryStub) Entries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LedgerEntry
	for _, e := range s.Ledger {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// CatalogRepositoryStub serves a fixed catalog.
type CatalogRepositoryStub struct {
	CountryItems []model.Country
	ServiceItems []model.Service
}

// NewCatalogRepositoryStub returns a stub with one available country and
// service pair for the common test path.
func NewCatalogRepositoryStub() *CatalogRepositoryStub {
	return &CatalogRepositoryStub{
		CountryItems: []model.Country{{ID: "us", Name: "United States", Code: "1", Price: 100, Available: true}},
		ServiceItems: []model.Service{{ID: "tg", Name: "Telegram", Price: 150, Available: true}},
	}
}

// Country returns the country by id or not found.
func (s *CatalogRepositoryStub) Country(ctx context.Context, countryID string) (*model.Country, error) {
	for _, c := range s.CountryItems {
		if c.ID == countryID {
			country := c
			return &country, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Service returns the service by id or not found.
func (s *CatalogRepositoryStub) Service(ctx context.Context, serviceID string) (*model.Service, error) {
	for _, sv := range s.ServiceItems {
		if sv.ID == serviceID {
			service := sv
			return &service, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Countries returns the configured catalog.
func (s *CatalogRepositoryStub) Countries(ctx context.Context) ([]model.Country, error) {
	return s.CountryItems, nil
}

// Services returns the configured catalog.
func (s *CatalogRepositoryStub) Services(ctx context.Context) ([]model.Service, error) {
	return s.ServiceItems, nil
}
