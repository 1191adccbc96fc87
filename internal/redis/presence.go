package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis key prefixes for presence
const (
	presenceKeyPrefix = "presence:"
	presenceOnlineSet = "presence:online"
)

// PresenceStatus mirrors what the console shows next to each identity.
type PresenceStatus struct {
	IdentityID string    `json:"identity_id"`
	IsOnline   bool      `json:"is_online"`
	LastSeen   time.Time `json:"last_seen"`
}

// PresenceStore tracks which identities hold at least one live transport.
// Shared across instances so any node can answer "is this agent online".
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

// Connected records a new transport for an identity.
func (p *PresenceStore) Connected(ctx context.Context, identityID, clientID string) error {
	pipe := p.client.Pipeline()
	pipe.HSet(ctx, connectionsKey(identityID), clientID, time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, connectionsKey(identityID), p.ttl)
	pipe.SAdd(ctx, presenceOnlineSet, identityID)
	status, _ := json.Marshal(PresenceStatus{IdentityID: identityID, IsOnline: true, LastSeen: time.Now()})
	pipe.Set(ctx, presenceKeyPrefix+identityID, status, p.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Disconnected drops a transport; the identity goes offline once its last
// transport is gone.
func (p *PresenceStore) Disconnected(ctx context.Context, identityID, clientID string) error {
	if err := p.client.HDel(ctx, connectionsKey(identityID), clientID).Err(); err != nil {
		return err
	}
	count, err := p.client.HLen(ctx, connectionsKey(identityID)).Result()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	pipe.SRem(ctx, presenceOnlineSet, identityID)
	status, _ := json.Marshal(PresenceStatus{IdentityID: identityID, IsOnline: false, LastSeen: time.Now()})
	pipe.Set(ctx, presenceKeyPrefix+identityID, status, 24*time.Hour)
	_, err = pipe.Exec(ctx)
	return err
}

// Heartbeat refreshes the TTL on an identity's presence keys.
func (p *PresenceStore) Heartbeat(ctx context.Context, identityID string) error {
	pipe := p.client.Pipeline()
	pipe.Expire(ctx, connectionsKey(identityID), p.ttl)
	pipe.Expire(ctx, presenceKeyPrefix+identityID, p.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// IsOnline checks if an identity holds a live transport on any instance.
func (p *PresenceStore) IsOnline(ctx context.Context, identityID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, identityID).Result()
}

// OnlineIdentities returns every identity with a live transport.
func (p *PresenceStore) OnlineIdentities(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}

func connectionsKey(identityID string) string {
	return "connections:" + identityID
}
