package model

import (
	"testing"
	"time"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"active", OrderStatusActive, "active"},
		{"completed", OrderStatusCompleted, "completed"},
		{"expired", OrderStatusExpired, "expired"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestEventTypeValues(t *testing.T) {
	cases := []struct {
		got   EventType
		value string
	}{
		{EventOrderCompleted, "order_completed"},
		{EventOrderExpired, "order_expired"},
		{EventMessageReceived, "message_received"},
	}

	for _, tc := range cases {
		if string(tc.got) != tc.value {
			t.Fatalf("expected %s, got %s", tc.value, tc.got)
		}
	}
}

func TestOrderActive(t *testing.T) {
	order := Order{Status: OrderStatusActive, Deadline: time.Now().Add(time.Minute)}
	if !order.Active() {
		t.Fatal("expected active order")
	}

	order.Status = OrderStatusCompleted
	if order.Active() {
		t.Fatal("completed order must not be active")
	}

	order.Status = OrderStatusExpired
	if order.Active() {
		t.Fatal("expired order must not be active")
	}
}
