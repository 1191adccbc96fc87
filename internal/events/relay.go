package events

import (
	"context"
	"encoding/json"

	"atendezap/pkg/logger"
)

// RelayChannel carries every event between instances. Events embed their
// target set, so one channel is enough; each instance filters locally.
const RelayChannel = "rt:events"

// BytePublisher and ByteSubscriber are satisfied by the redis pub/sub
// wrappers.
type BytePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type ByteSubscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

// RelayPublisher republishes events onto the relay channel so hubs on other
// instances can deliver to their own transports.
type RelayPublisher struct {
	pub BytePublisher
}

func NewRelayPublisher(pub BytePublisher) *RelayPublisher {
	return &RelayPublisher{pub: pub}
}

func (r *RelayPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.pub.Publish(ctx, RelayChannel, data)
}

// DedupPublisher drops events already delivered locally. The direct
// in-process path and the relay bridge share one Deduper, so an event that
// came back over the relay is never pushed twice to the same hub.
type DedupPublisher struct {
	dedup *Deduper
	next  Publisher
}

func NewDedupPublisher(dedup *Deduper, next Publisher) *DedupPublisher {
	return &DedupPublisher{dedup: dedup, next: next}
}

func (d *DedupPublisher) Publish(ctx context.Context, event Event) error {
	if d.dedup.Seen(event.ID) {
		return nil
	}
	return d.next.Publish(ctx, event)
}

// RelayBridge feeds relayed events into the local hub.
type RelayBridge struct {
	sub   ByteSubscriber
	local Publisher
	log   *logger.Logger
}

func NewRelayBridge(sub ByteSubscriber, local Publisher, log *logger.Logger) *RelayBridge {
	return &RelayBridge{sub: sub, local: local, log: log}
}

// Run blocks until ctx is cancelled or the subscription drops; callers wrap
// it in the reconnection supervisor.
func (b *RelayBridge) Run(ctx context.Context) error {
	return b.sub.Subscribe(ctx, []string{RelayChannel}, func(channel string, payload []byte) {
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			if b.log != nil {
				b.log.Warnf("relay: dropping malformed event: %s", err)
			}
			return
		}
		_ = b.local.Publish(ctx, event)
	})
}
