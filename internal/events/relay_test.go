package events

import (
	"context"
	"encoding/json"
	"testing"
)

type memBus struct {
	frames [][]byte
}

func (b *memBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.frames = append(b.frames, payload)
	return nil
}

func (b *memBus) Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error {
	for _, f := range b.frames {
		handler(RelayChannel, f)
	}
	return nil
}

func TestRelayRoundTrip(t *testing.T) {
	bus := &memBus{}

	sent, err := New(EventNewMessage, []string{"client-1", "agent-1"}, map[string]string{"body": "oi"})
	if err != nil {
		t.Fatal(err)
	}
	if err := NewRelayPublisher(bus).Publish(context.Background(), sent); err != nil {
		t.Fatal(err)
	}

	var received []Event
	local := PublisherFunc(func(ctx context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	bridge := NewRelayBridge(bus, local, nil)
	if err := bridge.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(received) != 1 {
		t.Fatalf("received %d events", len(received))
	}
	got := received[0]
	if got.ID != sent.ID || got.Type != sent.Type {
		t.Fatalf("event mangled in transit: %+v", got)
	}
	if len(got.TargetIdentityIDs) != 2 {
		t.Fatalf("targets = %v", got.TargetIdentityIDs)
	}
}

func TestRelayBridgeDropsMalformedFrames(t *testing.T) {
	bus := &memBus{frames: [][]byte{[]byte("not json")}}

	var received int
	local := PublisherFunc(func(ctx context.Context, event Event) error {
		received++
		return nil
	})

	if err := NewRelayBridge(bus, local, nil).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if received != 0 {
		t.Fatal("malformed frame was delivered")
	}
}

func TestSelfOriginatedEventNotDeliveredTwice(t *testing.T) {
	// Direct local path and relay feedback share one deduper; the relayed
	// copy of an event published here must be suppressed.
	bus := &memBus{}
	dedup := NewDeduper(16)

	var delivered int
	hub := PublisherFunc(func(ctx context.Context, event Event) error {
		delivered++
		return nil
	})
	local := NewDedupPublisher(dedup, hub)
	publisher := Fanout{local, NewRelayPublisher(bus)}

	event, err := New(EventNewMessage, []string{"agent-1"}, json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatal(err)
	}

	// The relay loops our own event back.
	if err := NewRelayBridge(bus, local, nil).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if delivered != 1 {
		t.Fatalf("delivered %d times, want 1", delivered)
	}
}
