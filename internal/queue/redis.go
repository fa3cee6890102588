// Package queue moves analysis jobs and reports over Redis lists.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"streamstats/internal/logging"
)

const (
	defaultJobQueueKey = "streamstats:jobs"
	dlqSuffix          = ":dlq"
	brPopBlock         = 5 * time.Second
)

// RedisQueue implements queue operations using Redis lists.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a Redis-backed queue helper.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, key: defaultJobQueueKey}
}

// Consume uses BRPOP to deliver jobs to the handler one at a time until the
// context is canceled. A job the handler rejects is moved to the dead-letter
// list and is not retried.
func (q *RedisQueue) Consume(ctx context.Context, queueName string, handler func([]byte) error) error {
	logger := logging.Logger()
	queueName = q.queueName(queueName)
	dlqKey := DeadLetterKey(queueName)

	for {
		if ctx.Err() != nil {
			logger.Warnf("redis consumer exiting: %v", ctx.Err())
			return ctx.Err()
		}

		result, err := q.client.BRPop(ctx, brPopBlock, queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				logger.Warnf("redis BRPOP canceled: %v", ctx.Err())
				return ctx.Err()
			}
			logger.Warnf("redis BRPOP error: %v", err)
			continue
		}
		payload, ok := jobPayload(result)
		if !ok {
			continue
		}
		if err := handler(payload); err != nil {
			logger.Warnf("handler error, moving job to %s: %v", dlqKey, err)
			if err := q.client.LPush(ctx, dlqKey, payload).Err(); err != nil {
				logger.Errorf("dead-letter push failed: %v", err)
			}
		}
	}
}

// Publish appends payload to the list at key.
func (q *RedisQueue) Publish(ctx context.Context, key string, payload []byte) error {
	return q.client.LPush(ctx, key, payload).Err()
}

func (q *RedisQueue) queueName(name string) string {
	if name == "" {
		return q.key
	}
	return name
}

// DeadLetterKey names the list that holds failed jobs of queue.
func DeadLetterKey(queue string) string {
	return queue + dlqSuffix
}

// jobPayload extracts the value from a BRPOP reply of [key, value].
func jobPayload(result []string) ([]byte, bool) {
	if len(result) < 2 {
		return nil, false
	}
	return []byte(result[1]), true
}
