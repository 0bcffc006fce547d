package provider

import (
	"errors"
	"net/http"
	"testing"
	"time"

	domainErrors "github.com/smslease/smslease/internal/domain/errors"
)

const validBody = `{"external_order_id":"ext-1","phone_number":"+16502530001","text":"your code is 1234","timestamp":"2024-05-01T10:00:00Z"}`

func TestHMACProviderVerify(t *testing.T) {
	p := NewHMACProvider("acme", "topsecret")
	body := []byte(validBody)

	t.Run("valid signature", func(t *testing.T) {
		header := http.Header{}
		header.Set(SignatureHeader, p.Sign(body))
		if err := p.Verify(header, body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing signature", func(t *testing.T) {
		if err := p.Verify(http.Header{}, body); !errors.Is(err, domainErrors.ErrUnauthorizedWebhook) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("malformed signature", func(t *testing.T) {
		header := http.Header{}
		header.Set(SignatureHeader, "not-hex")
		if err := p.Verify(header, body); !errors.Is(err, domainErrors.ErrUnauthorizedWebhook) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("signature of different body", func(t *testing.T) {
		header := http.Header{}
		header.Set(SignatureHeader, p.Sign([]byte("other body")))
		if err := p.Verify(header, body); !errors.Is(err, domainErrors.ErrUnauthorizedWebhook) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewHMACProvider("acme", "different")
		header := http.Header{}
		header.Set(SignatureHeader, other.Sign(body))
		if err := p.Verify(header, body); !errors.Is(err, domainErrors.ErrUnauthorizedWebhook) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}

func TestTokenProviderVerify(t *testing.T) {
	p := NewTokenProvider("legacy", "sharedtoken")

	t.Run("valid token", func(t *testing.T) {
		header := http.Header{}
		header.Set(TokenHeader, "sharedtoken")
		if err := p.Verify(header, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		if err := p.Verify(http.Header{}, nil); !errors.Is(err, domainErrors.ErrUnauthorizedWebhook) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		header := http.Header{}
		header.Set(TokenHeader, "guess")
		if err := p.Verify(header, nil); !errors.Is(err, domainErrors.ErrUnauthorizedWebhook) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}

func TestParsePayload(t *testing.T) {
	p := NewHMACProvider("acme", "s")

	t.Run("valid", func(t *testing.T) {
		sms, err := p.Parse([]byte(validBody))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sms.ExternalOrderID != "ext-1" || sms.PhoneNumber != "+16502530001" {
			t.Fatalf("unexpected sms: %+v", sms)
		}
		want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		if !sms.ReceivedAt.Equal(want) {
			t.Fatalf("unexpected timestamp: %v", sms.ReceivedAt)
		}
	})

	t.Run("formatted phone is normalized", func(t *testing.T) {
		sms, err := p.Parse([]byte(`{"phone_number":"+1 (650) 253-0001","text":"code 1234"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sms.PhoneNumber != "+16502530001" {
			t.Fatalf("expected E.164 phone, got %s", sms.PhoneNumber)
		}
	})

	t.Run("missing timestamp defaults to now", func(t *testing.T) {
		sms, err := p.Parse([]byte(`{"phone_number":"+16502530001","text":"code 1234"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Since(sms.ReceivedAt) > time.Minute {
			t.Fatalf("expected recent timestamp, got %v", sms.ReceivedAt)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "not json"},
		{name: "empty text", body: `{"phone_number":"+16502530001","text":"  "}`},
		{name: "invalid phone", body: `{"phone_number":"garbage","text":"code 1234"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Parse([]byte(tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseSpecs(t *testing.T) {
	t.Run("valid list", func(t *testing.T) {
		specs, err := ParseSpecs("acme:hmac:s1, legacy:token:s2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(specs) != 2 {
			t.Fatalf("expected 2 specs, got %d", len(specs))
		}
		if specs[0].Name != "acme" || specs[0].Scheme != SchemeHMAC || specs[0].Secret != "s1" {
			t.Fatalf("unexpected spec: %+v", specs[0])
		}
		if specs[1].Name != "legacy" || specs[1].Scheme != SchemeToken {
			t.Fatalf("unexpected spec: %+v", specs[1])
		}
	})

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "missing secret", raw: "acme:hmac:"},
		{name: "missing fields", raw: "acme"},
		{name: "unknown scheme", raw: "acme:plain:s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSpecs(tt.raw); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewRegistry(t *testing.T) {
	specs := []Spec{
		{Name: "acme", Scheme: SchemeHMAC, Secret: "s1"},
		{Name: "legacy", Scheme: SchemeToken, Secret: "s2"},
	}
	registry, err := NewRegistry(specs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p, ok := registry.Lookup("acme"); !ok || p.Name() != "acme" {
		t.Fatalf("expected acme adapter, got %v %v", p, ok)
	}
	if _, ok := registry.Lookup("unknown"); ok {
		t.Fatal("unexpected adapter for unknown name")
	}

	if _, err := NewRegistry([]Spec{
		{Name: "acme", Scheme: SchemeHMAC, Secret: "a"},
		{Name: "acme", Scheme: SchemeToken, Secret: "b"},
	}); err == nil {
		t.Fatal("expected duplicate name error")
	}
}
