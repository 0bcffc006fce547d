// Package provider holds the webhook adapters for SMS providers: each adapter
// authenticates an inbound notification and parses it into the generic
// payload the gateway matches against orders.
package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/pkg/phone"
)

// Provider is one SMS provider's webhook adapter.
type Provider interface {
	Name() string
	// Verify authenticates the delivery against the raw request body.
	Verify(header http.Header, body []byte) error
	// Parse extracts the inbound SMS from the body.
	Parse(body []byte) (*model.InboundSMS, error)
}

// webhookPayload is the generic wire format providers post.
type webhookPayload struct {
	ExternalOrderID string `json:"external_order_id"`
	PhoneNumber     string `json:"phone_number"`
	Text            string `json:"text"`
	Timestamp       string `json:"timestamp"`
}

func parsePayload(body []byte) (*model.InboundSMS, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if strings.TrimSpace(p.Text) == "" {
		return nil, fmt.Errorf("webhook payload: empty text")
	}

	normalized, err := phone.Normalize(p.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("webhook payload: %w", err)
	}

	receivedAt := time.Now().UTC()
	if p.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
			receivedAt = ts.UTC()
		}
	}

	return &model.InboundSMS{
		ExternalOrderID: p.ExternalOrderID,
		PhoneNumber:     normalized,
		Text:            strings.TrimSpace(p.Text),
		ReceivedAt:      receivedAt,
	}, nil
}

// unauthorized wraps the sentinel with a provider-specific reason for logs.
func unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", domainErrors.ErrUnauthorizedWebhook, reason)
}
