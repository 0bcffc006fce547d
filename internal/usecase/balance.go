package usecase

import (
	"context"

	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/domain/repository"
)

// BalanceUseCase manages the per-user balance ledger. Debits are atomic
// check-then-act operations serialized per user by the repository; credits
// never fail on business grounds.
type BalanceUseCase struct {
	balances repository.BalanceRepository
}

// NewBalanceUseCase constructs BalanceUseCase.
func NewBalanceUseCase(b repository.BalanceRepository) *BalanceUseCase {
	return &BalanceUseCase{balances: b}
}

// Amount returns the current balance, zero for unknown users.
func (u *BalanceUseCase) Amount(ctx context.Context, userID int64) (int64, error) {
	return u.balances.Amount(ctx, userID)
}

// TryDebit withdraws amount for the given order, failing with
// ErrInsufficientBalance when the balance would go negative.
func (u *BalanceUseCase) TryDebit(ctx context.Context, userID int64, amount int64, orderID string) error {
	return u.balances.TryDebit(ctx, userID, amount, orderID)
}

// Credit adds amount back, referencing the causal order.
func (u *BalanceUseCase) Credit(ctx context.Context, userID int64, amount int64, orderID string) error {
	return u.balances.Credit(ctx, userID, amount, orderID)
}

// History returns ledger entries newest first.
func (u *BalanceUseCase) History(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return u.balances.Entries(ctx, userID)
}
