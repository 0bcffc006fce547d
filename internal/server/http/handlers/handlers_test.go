package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
	"github.com/smslease/smslease/internal/domain/model"
	"github.com/smslease/smslease/internal/provider"
	"github.com/smslease/smslease/internal/server/http/dto"
	"github.com/smslease/smslease/internal/server/http/middleware"
	testhelpers "github.com/smslease/smslease/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func asUser(userID int64) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, userID)
	}
}

func performRequest(t *testing.T, method, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	routePath := path
	if i := strings.Index(routePath, "?"); i >= 0 {
		routePath = routePath[:i]
	}
	router.Handle(method, routePath, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Fatalf("expected 0 when not set, got %d", got)
	}

	c.Set(middleware.UserIDContextKey, int64(42))
	if got := CurrentUserID(c); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	body, _ := json.Marshal(dto.CreateOrderRequest{CountryID: "us", ServiceID: "tg"})
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{CreateFn: func(ctx context.Context, userID int64, countryID, serviceID string) (*model.Order, error) {
		if userID != 7 || countryID != "us" || serviceID != "tg" {
			t.Fatalf("unexpected arguments: %d %s %s", userID, countryID, serviceID)
		}
		return &model.Order{ID: "order-1", UserID: userID, PhoneNumber: "+16502530001", Price: 150, Status: model.OrderStatusActive}, nil
	}})

	resp := performRequest(t, http.MethodPost, "/orders", handler.Create, asUser(7), body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}

	var got dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "order-1" || got.PhoneNumber != "+16502530001" || got.Status != "active" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestOrderHandlerCreateFailures(t *testing.T) {
	valid, _ := json.Marshal(dto.CreateOrderRequest{CountryID: "us", ServiceID: "tg"})
	withErr := func(err error) testhelpers.OrderFacadeStub {
		return testhelpers.OrderFacadeStub{CreateFn: func(context.Context, int64, string, string) (*model.Order, error) {
			return nil, err
		}}
	}

	tests := []struct {
		name   string
		facade testhelpers.OrderFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "missing fields", body: []byte(`{"country_id":"us"}`), status: http.StatusBadRequest},
		{name: "unknown catalog entry", body: valid, facade: withErr(domainErrors.ErrNotFound), status: http.StatusNotFound},
		{name: "unavailable", body: valid, facade: withErr(domainErrors.ErrUnavailable), status: http.StatusUnprocessableEntity},
		{name: "insufficient balance", body: valid, facade: withErr(domainErrors.ErrInsufficientBalance), status: http.StatusPaymentRequired},
		{name: "no numbers", body: valid, facade: withErr(domainErrors.ErrNoNumbersAvailable), status: http.StatusConflict},
		{name: "internal", body: valid, facade: withErr(errors.New("boom")), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(tt.facade).Create, asUser(7), tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerList(t *testing.T) {
	t.Run("with orders", func(t *testing.T) {
		resp := performRequest(t, http.MethodGet, "/orders", NewOrderHandler(testhelpers.OrderFacadeStub{}).List, asUser(7), nil, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.Code)
		}
		var got []dto.OrderResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(got) != 1 || got[0].ID != "order-1" {
			t.Fatalf("unexpected response: %+v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		handler := NewOrderHandler(testhelpers.OrderFacadeStub{OrdersFn: func(context.Context, int64) ([]model.Order, error) {
			return nil, nil
		}})
		resp := performRequest(t, http.MethodGet, "/orders", handler.List, asUser(7), nil, nil)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", resp.Code)
		}
	})

	t.Run("internal error", func(t *testing.T) {
		handler := NewOrderHandler(testhelpers.OrderFacadeStub{OrdersFn: func(context.Context, int64) ([]model.Order, error) {
			return nil, errors.New("boom")
		}})
		resp := performRequest(t, http.MethodGet, "/orders", handler.List, asUser(7), nil, nil)
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", resp.Code)
		}
	})
}

func TestOrderHandlerGet(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "found", err: nil, status: http.StatusOK},
		{name: "not found", err: domainErrors.ErrNotFound, status: http.StatusNotFound},
		{name: "foreign order", err: domainErrors.ErrForeignOrder, status: http.StatusForbidden},
		{name: "internal", err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewOrderHandler(testhelpers.OrderFacadeStub{OrderFn: func(ctx context.Context, userID int64, orderID string) (*model.Order, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &model.Order{ID: orderID, UserID: userID}, nil
			}})
			resp := performRequest(t, http.MethodGet, "/orders/order-1", handler.Get, asUser(7), nil, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestMessageHandlerList(t *testing.T) {
	t.Run("missing order id", func(t *testing.T) {
		resp := performRequest(t, http.MethodGet, "/messages", NewMessageHandler(testhelpers.OrderFacadeStub{}).List, asUser(7), nil, nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", resp.Code)
		}
	})

	t.Run("with messages", func(t *testing.T) {
		resp := performRequest(t, http.MethodGet, "/messages?order_id=order-1", NewMessageHandler(testhelpers.OrderFacadeStub{}).List, asUser(7), nil, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.Code)
		}
		var got []dto.MessageResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(got) != 1 || got[0].OrderID != "order-1" {
			t.Fatalf("unexpected response: %+v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		handler := NewMessageHandler(testhelpers.OrderFacadeStub{MessagesFn: func(context.Context, int64, string) ([]model.Message, error) {
			return nil, nil
		}})
		resp := performRequest(t, http.MethodGet, "/messages?order_id=order-1", handler.List, asUser(7), nil, nil)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", resp.Code)
		}
	})

	t.Run("foreign order", func(t *testing.T) {
		handler := NewMessageHandler(testhelpers.OrderFacadeStub{MessagesFn: func(context.Context, int64, string) ([]model.Message, error) {
			return nil, domainErrors.ErrForeignOrder
		}})
		resp := performRequest(t, http.MethodGet, "/messages?order_id=order-1", handler.List, asUser(7), nil, nil)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", resp.Code)
		}
	})
}

func TestBalanceHandlerSummary(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/balance", NewBalanceHandler(testhelpers.BalanceFacadeStub{}).Summary, asUser(7), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var got dto.BalanceResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Amount != 500 {
		t.Fatalf("unexpected amount %d", got.Amount)
	}
}

func TestBalanceHandlerHistory(t *testing.T) {
	t.Run("with entries", func(t *testing.T) {
		resp := performRequest(t, http.MethodGet, "/balance/history", NewBalanceHandler(testhelpers.BalanceFacadeStub{}).History, asUser(7), nil, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.Code)
		}
		var got []dto.LedgerEntryResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(got) != 1 || got[0].Amount != -100 {
			t.Fatalf("unexpected response: %+v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		handler := NewBalanceHandler(testhelpers.BalanceFacadeStub{HistoryFn: func(context.Context, int64) ([]model.LedgerEntry, error) {
			return nil, nil
		}})
		resp := performRequest(t, http.MethodGet, "/balance/history", handler.History, asUser(7), nil, nil)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", resp.Code)
		}
	})
}

func TestCatalogHandler(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/countries", NewCatalogHandler(testhelpers.CatalogFacadeStub{}).Countries, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var countries []dto.CountryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &countries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(countries) != 1 || countries[0].ID != "us" {
		t.Fatalf("unexpected response: %+v", countries)
	}

	resp = performRequest(t, http.MethodGet, "/services", NewCatalogHandler(testhelpers.CatalogFacadeStub{}).Services, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var services []dto.ServiceResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &services); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(services) != 1 || services[0].ID != "tg" {
		t.Fatalf("unexpected response: %+v", services)
	}
}

func newWebhookRegistry(t *testing.T) (*provider.Registry, *provider.HMACProvider) {
	t.Helper()
	registry, err := provider.NewRegistry([]provider.Spec{{Name: "acme", Scheme: provider.SchemeHMAC, Secret: "topsecret"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	signer := provider.NewHMACProvider("acme", "topsecret")
	return registry, signer
}

func TestWebhookHandlerReceive(t *testing.T) {
	validBody := []byte(`{"external_order_id":"ext-1","phone_number":"+16502530001","text":"code 1234"}`)

	t.Run("accepted", func(t *testing.T) {
		registry, signer := newWebhookRegistry(t)
		facade := &testhelpers.WebhookFacadeStub{}
		handler := NewWebhookHandler(facade, registry, testhelpers.NewLogger())

		resp := performRequest(t, http.MethodPost, "/webhook/sms/acme", func(c *gin.Context) {
			c.Params = gin.Params{{Key: "provider", Value: "acme"}}
			handler.Receive(c)
		}, nil, validBody, map[string]string{provider.SignatureHeader: signer.Sign(validBody)})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.Code)
		}
		if facade.CallCount() != 1 {
			t.Fatalf("expected one processed delivery, got %d", facade.CallCount())
		}
		if facade.Calls[0].SMS.ExternalOrderID != "ext-1" {
			t.Fatalf("unexpected sms: %+v", facade.Calls[0].SMS)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		registry, _ := newWebhookRegistry(t)
		handler := NewWebhookHandler(&testhelpers.WebhookFacadeStub{}, registry, testhelpers.NewLogger())
		resp := performRequest(t, http.MethodPost, "/webhook/sms/nobody", func(c *gin.Context) {
			c.Params = gin.Params{{Key: "provider", Value: "nobody"}}
			handler.Receive(c)
		}, nil, validBody, nil)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", resp.Code)
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		registry, _ := newWebhookRegistry(t)
		facade := &testhelpers.WebhookFacadeStub{}
		handler := NewWebhookHandler(facade, registry, testhelpers.NewLogger())
		resp := performRequest(t, http.MethodPost, "/webhook/sms/acme", func(c *gin.Context) {
			c.Params = gin.Params{{Key: "provider", Value: "acme"}}
			handler.Receive(c)
		}, nil, validBody, map[string]string{provider.SignatureHeader: "deadbeef"})
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", resp.Code)
		}
		if facade.CallCount() != 0 {
			t.Fatal("unauthenticated delivery must not be processed")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		registry, signer := newWebhookRegistry(t)
		handler := NewWebhookHandler(&testhelpers.WebhookFacadeStub{}, registry, testhelpers.NewLogger())
		body := []byte("not json")
		resp := performRequest(t, http.MethodPost, "/webhook/sms/acme", func(c *gin.Context) {
			c.Params = gin.Params{{Key: "provider", Value: "acme"}}
			handler.Receive(c)
		}, nil, body, map[string]string{provider.SignatureHeader: signer.Sign(body)})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", resp.Code)
		}
	})

	t.Run("no matching order still acknowledged", func(t *testing.T) {
		registry, signer := newWebhookRegistry(t)
		facade := &testhelpers.WebhookFacadeStub{ProcessFn: func(context.Context, string, *model.InboundSMS) error {
			return domainErrors.ErrNoMatchingOrder
		}}
		handler := NewWebhookHandler(facade, registry, testhelpers.NewLogger())
		resp := performRequest(t, http.MethodPost, "/webhook/sms/acme", func(c *gin.Context) {
			c.Params = gin.Params{{Key: "provider", Value: "acme"}}
			handler.Receive(c)
		}, nil, validBody, map[string]string{provider.SignatureHeader: signer.Sign(validBody)})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.Code)
		}
	})

	t.Run("internal error", func(t *testing.T) {
		registry, signer := newWebhookRegistry(t)
		facade := &testhelpers.WebhookFacadeStub{ProcessFn: func(context.Context, string, *model.InboundSMS) error {
			return errors.New("db down")
		}}
		handler := NewWebhookHandler(facade, registry, testhelpers.NewLogger())
		resp := performRequest(t, http.MethodPost, "/webhook/sms/acme", func(c *gin.Context) {
			c.Params = gin.Params{{Key: "provider", Value: "acme"}}
			handler.Receive(c)
		}, nil, validBody, map[string]string{provider.SignatureHeader: signer.Sign(validBody)})
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", resp.Code)
		}
	})
}
