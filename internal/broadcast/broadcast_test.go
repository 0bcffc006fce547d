package broadcast

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/smslease/smslease/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receive(t *testing.T, sub *Subscription) model.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return model.Event{}
}

func TestBroadcasterFansOutToAllUserConnections(t *testing.T) {
	b := New(4, discardLogger())
	defer b.Close()

	first := b.Subscribe(7)
	second := b.Subscribe(7)
	other := b.Subscribe(8)

	b.Publish(model.Event{Type: model.EventOrderCompleted, UserID: 7, OrderID: "order-1"})

	if ev := receive(t, first); ev.OrderID != "order-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev := receive(t, second); ev.OrderID != "order-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	select {
	case ev := <-other.Events():
		t.Fatalf("event leaked to another user: %+v", ev)
	default:
	}
}

func TestBroadcasterDropsWhenNobodyListens(t *testing.T) {
	b := New(4, discardLogger())
	defer b.Close()

	// Must not block or panic.
	b.Publish(model.Event{Type: model.EventOrderExpired, UserID: 42, OrderID: "order-1"})
}

func TestBroadcasterOverflowDropsOldest(t *testing.T) {
	b := New(2, discardLogger())
	defer b.Close()

	sub := b.Subscribe(7)
	for i := 0; i < 5; i++ {
		b.Publish(model.Event{Type: model.EventMessageReceived, UserID: 7, OrderID: orderID(i)})
	}

	// The two newest events survive; the publisher never blocked.
	first := receive(t, sub)
	second := receive(t, sub)
	if first.OrderID != "order-3" || second.OrderID != "order-4" {
		t.Fatalf("expected newest events to survive, got %s then %s", first.OrderID, second.OrderID)
	}
}

func orderID(i int) string {
	return "order-" + string(rune('0'+i))
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	b := New(4, discardLogger())
	defer b.Close()

	sub := b.Subscribe(7)
	if b.Connections(7) != 1 {
		t.Fatalf("expected 1 connection, got %d", b.Connections(7))
	}
	b.Unsubscribe(sub)
	if b.Connections(7) != 0 {
		t.Fatalf("expected 0 connections, got %d", b.Connections(7))
	}

	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected closed channel")
	}

	// Publishing after unsubscribe must not panic.
	b.Publish(model.Event{Type: model.EventOrderCompleted, UserID: 7})
	// Double unsubscribe is a no-op.
	b.Unsubscribe(sub)
}

func TestBroadcasterClose(t *testing.T) {
	b := New(4, discardLogger())
	sub := b.Subscribe(7)

	b.Close()
	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected closed channel")
	}

	// Subscribing after close yields an already-closed subscription.
	late := b.Subscribe(8)
	if _, ok := <-late.Events(); ok {
		t.Fatal("expected closed channel for late subscriber")
	}

	b.Publish(model.Event{UserID: 7})
	b.Close()
}
