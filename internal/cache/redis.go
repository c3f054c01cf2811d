// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for room action logs.
const DefaultQueueName = "bluff_actions"

// RoomActionRecord holds the minimal info needed by the historian service.
type RoomActionRecord struct {
	RoomID        uuid.UUID              `json:"room_id"`
	ActionIndex   int                    `json:"action_index"`
	Seat          int                    `json:"seat"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// RedisRecorder pushes room action records onto a Redis list.
type RedisRecorder struct {
	client *redis.Client
	queue  string
}

// NewRedisRecorder connects to Redis at addr and verifies the connection with a ping.
func NewRedisRecorder(addr string, db int, queue string) (*RedisRecorder, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisRecorder{client: client, queue: queue}, nil
}

// NewRedisRecorderWithClient wraps an existing client, e.g. one pointed at a test server.
func NewRedisRecorderWithClient(client *redis.Client, queue string) *RedisRecorder {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisRecorder{client: client, queue: queue}
}

// Publish serializes the record to JSON, then pushes it to the Redis queue.
func (r *RedisRecorder) Publish(ctx context.Context, record RoomActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomActionRecord: %w", err)
	}
	if err := r.client.RPush(ctx, r.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", r.queue, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record on the queue. It returns redis.Nil when the
// timeout passes with nothing queued.
func (r *RedisRecorder) Pop(ctx context.Context, timeout time.Duration) (RoomActionRecord, error) {
	var rec RoomActionRecord
	res, err := r.client.BLPop(ctx, timeout, r.queue).Result()
	if err != nil {
		return rec, err
	}
	if len(res) < 2 {
		return rec, fmt.Errorf("unexpected BLPOP reply of length %d", len(res))
	}
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return rec, fmt.Errorf("failed to unmarshal RoomActionRecord: %w", err)
	}
	return rec, nil
}

// Close releases the Redis connection pool.
func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
