package redis

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// Purchase ids are 64-bit integers but stored as opaque strings so the
// persisted form never loses precision.
const hiddenPurchasesKey = "purchases:hidden_ids"

// VisibilityRepo is the durable set of purchase-request ids the client has
// decided to hide regardless of what the remote store reports. Entries never
// expire; Clear is the only way to unhide.
type VisibilityRepo struct {
	client *goredis.Client
}

func NewVisibilityRepo(client *goredis.Client) *VisibilityRepo {
	return &VisibilityRepo{client: client}
}

func (r *VisibilityRepo) Hide(ctx context.Context, id string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("purchase id is required")
	}
	if err := r.client.SAdd(ctx, hiddenPurchasesKey, id).Err(); err != nil {
		return fmt.Errorf("hide purchase id: %w", err)
	}
	return nil
}

func (r *VisibilityRepo) IsHidden(ctx context.Context, id string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	hidden, err := r.client.SIsMember(ctx, hiddenPurchasesKey, id).Result()
	if err != nil {
		return false, fmt.Errorf("check hidden purchase id: %w", err)
	}
	return hidden, nil
}

func (r *VisibilityRepo) HiddenIDs(ctx context.Context) (map[string]struct{}, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	members, err := r.client.SMembers(ctx, hiddenPurchasesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list hidden purchase ids: %w", err)
	}
	ids := make(map[string]struct{}, len(members))
	for _, member := range members {
		ids[member] = struct{}{}
	}
	return ids, nil
}

func (r *VisibilityRepo) Clear(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, hiddenPurchasesKey).Err(); err != nil {
		return fmt.Errorf("clear hidden purchase ids: %w", err)
	}
	return nil
}
