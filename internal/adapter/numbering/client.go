package numbering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
)

// Client exposes operations against the numbering service that owns the pool
// of leasable phone numbers.
type Client interface {
	Assign(ctx context.Context, countryID string) (*model.NumberAssignment, error)
	Release(ctx context.Context, externalID string) error
}

// HTTPClient implements Client via the provider's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type assignRequest struct {
	CountryID string `json:"country_id"`
}

// assignResponse mirrors the JSON payload from the numbering service. The
// provider field names the SMS provider serving the number and may be absent.
type assignResponse struct {
	PhoneNumber string `json:"phone_number"`
	OrderID     string `json:"order_id"`
	Provider    string `json:"provider"`
}

// NewHTTPClient creates an HTTP numbering client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse numbering url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("numbering url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Assign leases a number for the country. Pool exhaustion maps to
// ErrNoNumbersAvailable.
func (c *HTTPClient) Assign(ctx context.Context, countryID string) (*model.NumberAssignment, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/numbers")

	body, err := json.Marshal(assignRequest{CountryID: countryID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var parsed assignResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, err
		}
		if parsed.PhoneNumber == "" {
			return nil, fmt.Errorf("numbering response missing phone number")
		}
		return &model.NumberAssignment{
			PhoneNumber: parsed.PhoneNumber,
			ExternalID:  parsed.OrderID,
			Provider:    parsed.Provider,
		}, nil
	case http.StatusConflict, http.StatusNoContent:
		return nil, domainErrors.ErrNoNumbersAvailable
	default:
		data, _ := io.ReadAll(resp.Body)
		c.logger.Error("numbering assign failed", slog.Int("status", resp.StatusCode), slog.String("body", string(data)))
		return nil, fmt.Errorf("numbering error: %s", resp.Status)
	}
}

// Release returns the assignment to the pool. A missing assignment is not an
// error: the provider may have reclaimed it already.
func (c *HTTPClient) Release(ctx context.Context, externalID string) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/numbers/", externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		data, _ := io.ReadAll(resp.Body)
		c.logger.Error("numbering release failed", slog.Int("status", resp.StatusCode), slog.String("body", string(data)))
		return fmt.Errorf("numbering error: %s", resp.Status)
	}
}
