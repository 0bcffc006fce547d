package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/domain/repository"
	"github.com/smslease/smslease/internal/pkg/phone"
)

// WebhookUseCase resolves authenticated provider notifications to exactly one
// active order and drives its completion. Ambiguous matches are rejected, never
// guessed at.
type WebhookUseCase struct {
	orders  repository.OrderRepository
	manager *OrderUseCase
	logger  *slog.Logger
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(orders repository.OrderRepository, manager *OrderUseCase, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{orders: orders, manager: manager, logger: logger}
}

// Process matches the inbound SMS to an active order and completes it.
// Duplicate deliveries for an already completed order are swallowed so
// provider retries stay idempotent.
func (u *WebhookUseCase) Process(ctx context.Context, providerName string, sms *model.InboundSMS) error {
	order, err := u.match(ctx, providerName, sms)
	if err != nil {
		u.logger.Warn("webhook match failed",
			slog.String("provider", providerName),
			slog.String("external_order_id", sms.ExternalOrderID),
			slog.String("phone", sms.PhoneNumber),
			slog.String("error", err.Error()),
		)
		return err
	}

	code := ExtractCode(sms.Text)
	if _, err := u.manager.Complete(ctx, order.ID, sms.Text, code); err != nil {
		if errors.Is(err, domainErrors.ErrOrderNotActive) {
			u.logger.Info("duplicate webhook delivery ignored",
				slog.String("provider", providerName),
				slog.String("order", order.ID),
			)
			return nil
		}
		return err
	}
	return nil
}

// match resolves the order: by the provider-supplied external order id first,
// then by assigned phone number among active orders. Candidates are limited to
// orders served by the delivering provider (or recorded without one), so a
// notification can never complete an order another provider's number backs.
// Anything but exactly one candidate is ErrNoMatchingOrder.
func (u *WebhookUseCase) match(ctx context.Context, providerName string, sms *model.InboundSMS) (*model.Order, error) {
	if sms.ExternalOrderID != "" {
		candidates, err := u.orders.FindActiveByExternalID(ctx, providerName, sms.ExternalOrderID)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 1 {
			return &candidates[0], nil
		}
		if len(candidates) > 1 {
			return nil, domainErrors.ErrNoMatchingOrder
		}
	}

	normalized, err := phone.Normalize(sms.PhoneNumber)
	if err != nil {
		return nil, domainErrors.ErrNoMatchingOrder
	}
	candidates, err := u.orders.FindActiveByPhone(ctx, providerName, normalized)
	if err != nil {
		return nil, err
	}
	if len(candidates) != 1 {
		return nil, domainErrors.ErrNoMatchingOrder
	}
	return &candidates[0], nil
}
