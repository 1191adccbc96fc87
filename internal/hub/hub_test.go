package hub

import (
	"context"
	"encoding/json"
	"testing"

	"atendezap/internal/events"
)

func testClient(identityID string) *Client {
	return NewClient(nil, identityID, "")
}

func mustEvent(t *testing.T, targets []string) events.Event {
	t.Helper()
	event, err := events.New(events.EventNewMessage, targets, map[string]string{"body": "oi"})
	if err != nil {
		t.Fatal(err)
	}
	return event
}

func drain(t *testing.T, c *Client) frame {
	t.Helper()
	select {
	case payload := <-c.Send:
		var f frame
		if err := json.Unmarshal(payload, &f); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return f
	default:
		t.Fatal("no frame queued")
	}
	return frame{}
}

func TestPublishTargetsOnlyNamedIdentities(t *testing.T) {
	h := New(nil)
	client := testClient("client-1")
	agent := testClient("agent-1")
	bystander := testClient("agent-2")
	h.Subscribe(client)
	h.Subscribe(agent)
	h.Subscribe(bystander)

	event := mustEvent(t, []string{"client-1", "agent-1"})
	if err := h.Publish(context.Background(), event); err != nil {
		t.Fatal(err)
	}

	for _, c := range []*Client{client, agent} {
		f := drain(t, c)
		if f.Type != events.EventNewMessage {
			t.Fatalf("wrong frame type %s", f.Type)
		}
		if f.ID != event.ID.String() {
			t.Fatalf("frame id %s, want %s", f.ID, event.ID)
		}
	}

	select {
	case <-bystander.Send:
		t.Fatal("bystander received a frame")
	default:
	}
}

func TestPublishReachesEveryTransportOfAnIdentity(t *testing.T) {
	h := New(nil)
	tab1 := testClient("agent-1")
	tab2 := testClient("agent-1")
	h.Subscribe(tab1)
	h.Subscribe(tab2)

	if err := h.Publish(context.Background(), mustEvent(t, []string{"agent-1"})); err != nil {
		t.Fatal(err)
	}

	drain(t, tab1)
	drain(t, tab2)
}

func TestPublishEvictsDeadTransport(t *testing.T) {
	h := New(nil)
	alive := testClient("agent-1")
	dead := testClient("agent-1")
	dead.Close()
	h.Subscribe(alive)
	h.Subscribe(dead)

	if err := h.Publish(context.Background(), mustEvent(t, []string{"agent-1"})); err != nil {
		t.Fatal(err)
	}

	drain(t, alive)
	if h.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", h.ClientCount())
	}
}

func TestUnsubscribeRemovesIdentityWhenLastTransportLeaves(t *testing.T) {
	h := New(nil)
	c := testClient("client-1")
	h.Subscribe(c)

	if !h.IdentityOnline("client-1") {
		t.Fatal("identity should be online")
	}

	h.Unsubscribe(c)
	if h.IdentityOnline("client-1") {
		t.Fatal("identity still online after unsubscribe")
	}
	if !c.Closed() {
		t.Fatal("transport not closed on unsubscribe")
	}
}

func TestResubscribeSameTransportDeliversOnce(t *testing.T) {
	h := New(nil)
	c := testClient("agent-1")

	// A reconnecting UI may re-register without cleaning up first; the
	// transport must not end up double-subscribed.
	h.Subscribe(c)
	h.Subscribe(c)

	if h.ClientCount() != 1 {
		t.Fatalf("client count = %d after re-subscribe, want 1", h.ClientCount())
	}

	if err := h.Publish(context.Background(), mustEvent(t, []string{"agent-1"})); err != nil {
		t.Fatal(err)
	}
	drain(t, c)
	select {
	case <-c.Send:
		t.Fatal("frame delivered twice to a re-subscribed transport")
	default:
	}
}

func TestSubscribeIsImmediatelyVisibleToPublish(t *testing.T) {
	h := New(nil)
	c := testClient("client-1")
	h.Subscribe(c)

	// No intermediary loop: once Subscribe returns the very next publish
	// must reach the transport.
	if err := h.Publish(context.Background(), mustEvent(t, []string{"client-1"})); err != nil {
		t.Fatal(err)
	}
	drain(t, c)
}

func TestPublishToOfflineIdentityIsNoop(t *testing.T) {
	h := New(nil)
	if err := h.Publish(context.Background(), mustEvent(t, []string{"ghost"})); err != nil {
		t.Fatal(err)
	}
}

func TestEnqueueFailsOnFullBuffer(t *testing.T) {
	c := testClient("agent-1")
	for i := 0; i < sendBuffer; i++ {
		if err := c.Enqueue([]byte("x")); err != nil {
			t.Fatalf("enqueue %d failed early: %v", i, err)
		}
	}
	if err := c.Enqueue([]byte("overflow")); err == nil {
		t.Fatal("expected enqueue to fail on full buffer")
	}
}
