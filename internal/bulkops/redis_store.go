package bulkops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	cberrors "github.com/jonathan/careerbase/internal/errors"
	"github.com/jonathan/careerbase/internal/types"
)

const redisKeyPrefix = "careerbase:op:"

// RedisOperationStore keeps operation snapshots in Redis so that status
// polling works across processes. Terminal snapshots expire after the
// retention window; in-flight snapshots carry no TTL.
type RedisOperationStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisOperationStore wraps an existing client. Retention falls back to
// DefaultRetention when zero.
func NewRedisOperationStore(client *redis.Client, retention time.Duration) *RedisOperationStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisOperationStore{client: client, retention: retention}
}

// Put stores a snapshot, applying the retention TTL once terminal.
func (r *RedisOperationStore) Put(ctx context.Context, op types.Operation) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return &cberrors.StoreError{Op: fmt.Sprintf("encode operation %s", op.ID), Cause: err}
	}
	var ttl time.Duration
	if op.Status.Terminal() {
		ttl = r.retention
	}
	if err := r.client.Set(ctx, redisKeyPrefix+op.ID, payload, ttl).Err(); err != nil {
		return &cberrors.StoreError{Op: fmt.Sprintf("store operation %s", op.ID), Cause: err}
	}
	return nil
}

// Get returns a snapshot, or nil when the key is absent or expired.
func (r *RedisOperationStore) Get(ctx context.Context, id string) (*types.Operation, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &cberrors.StoreError{Op: fmt.Sprintf("load operation %s", id), Cause: err}
	}
	var op types.Operation
	if err := json.Unmarshal(payload, &op); err != nil {
		return nil, &cberrors.StoreError{Op: fmt.Sprintf("decode operation %s", id), Cause: err}
	}
	return &op, nil
}

// Delete removes a snapshot.
func (r *RedisOperationStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return &cberrors.StoreError{Op: fmt.Sprintf("delete operation %s", id), Cause: err}
	}
	return nil
}
