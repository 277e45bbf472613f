package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/redis/go-redis/v9"
)

const defaultBlock = time.Second

// RedisQueue keeps events in a Redis list so they survive restarts.
// Producers LPUSH and workers BRPOP, giving FIFO order.
type RedisQueue struct {
	client *redis.Client
	key    string
	// block is how long a single BRPOP waits before checking ctx again.
	block time.Duration
}

// NewRedisQueue connects to redisURL and checks the connection.
func NewRedisQueue(ctx context.Context, redisURL, key string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisQueueWithClient(client, key), nil
}

func NewRedisQueueWithClient(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key, block: defaultBlock}
}

func (q *RedisQueue) Push(ctx context.Context, ev domain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push event: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (domain.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Event{}, err
		}

		res, err := q.client.BRPop(ctx, q.block, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if errors.Is(err, redis.ErrClosed) {
			return domain.Event{}, ErrClosed
		}
		if err != nil {
			return domain.Event{}, fmt.Errorf("pop event: %w", err)
		}

		// res is [key, value]
		var ev domain.Event
		if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
			return domain.Event{}, fmt.Errorf("unmarshal event: %w", err)
		}
		return ev, nil
	}
}

// Len reports the number of queued events.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
