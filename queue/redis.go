package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"statuspulse/client"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const (
	keyPrefix      = "statuspulse:queue:"
	controlChannel = "statuspulse:control"
)

type RedisQueue struct {
	rdb *redis.Client
	// BlockTimeout bounds each blocking pop so promotion of due
	// repeatables and shutdown are noticed promptly.
	BlockTimeout time.Duration
	now          func() time.Time
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, BlockTimeout: time.Second, now: time.Now}
}

// Connect dials Redis and returns a queue on top of it. It has the shape
// of a scheduler queue connector.
func Connect(uri string) func(ctx context.Context) (Queue, error) {
	return func(ctx context.Context) (Queue, error) {
		rdb, err := client.ConnectRedis(ctx, uri)
		if err != nil {
			return nil, err
		}
		log.Println("[REDIS] Connected")
		return NewRedisQueue(rdb), nil
	}
}

func repeatKey(q string) string  { return keyPrefix + q + ":repeat" }
func delayedKey(q string) string { return keyPrefix + q + ":delayed" }
func waitKey(q string) string    { return keyPrefix + q + ":wait" }

func nextRun(cronExpr string, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return sched.Next(from), nil
}

func (q *RedisQueue) EnqueueRepeatable(ctx context.Context, queueName, jobName, cronExpr string) (bool, error) {
	next, err := nextRun(cronExpr, q.now())
	if err != nil {
		return false, err
	}

	key := RepeatKey(jobName, cronExpr)
	def, err := json.Marshal(Repeatable{Key: key, Queue: queueName, Name: jobName, Cron: cronExpr})
	if err != nil {
		return false, err
	}

	added, err := registerScript.Run(ctx, q.rdb,
		[]string{repeatKey(queueName), delayedKey(queueName)},
		key, def, next.UnixMilli()).Int()
	if err != nil {
		return false, fmt.Errorf("register repeatable %s: %w", key, err)
	}
	return added == 1, nil
}

// registerScript writes the definition and its fire time together. The
// fire time is added even when the definition already exists, so an entry
// that lost its zset member is rescheduled instead of never firing.
var registerScript = redis.NewScript(`
local added = redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[2], 'NX', ARGV[3], ARGV[1])
return added
`)

func (q *RedisQueue) ListRepeatables(ctx context.Context, queueName string) ([]Repeatable, error) {
	pipe := q.rdb.Pipeline()
	defs := pipe.HGetAll(ctx, repeatKey(queueName))
	scores := pipe.ZRangeWithScores(ctx, delayedKey(queueName), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("list repeatables: %w", err)
	}

	nextByKey := make(map[string]time.Time)
	for _, z := range scores.Val() {
		if member, ok := z.Member.(string); ok {
			nextByKey[member] = time.UnixMilli(int64(z.Score))
		}
	}

	var out []Repeatable
	for key, raw := range defs.Val() {
		var r Repeatable
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			log.Printf("[QUEUE] Skipping unreadable repeatable %s: %v", key, err)
			continue
		}
		r.Next = nextByKey[key]
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (q *RedisQueue) RemoveRepeatable(ctx context.Context, queueName, key string) error {
	pipe := q.rdb.TxPipeline()
	pipe.HDel(ctx, repeatKey(queueName), key)
	pipe.ZRem(ctx, delayedKey(queueName), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove repeatable %s: %w", key, err)
	}
	return nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, queueName, jobName string, params map[string]string) (string, error) {
	msg := Message{
		ID:         uuid.NewString(),
		Queue:      queueName,
		Name:       jobName,
		Params:     params,
		EnqueuedAt: q.now().UTC(),
	}
	if err := q.push(ctx, msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (q *RedisQueue) push(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := q.rdb.LPush(ctx, waitKey(msg.Queue), body).Err(); err != nil {
		return fmt.Errorf("enqueue %s on %s: %w", msg.Name, msg.Queue, err)
	}
	return nil
}

// claimScript reschedules a repeatable only if it is still due. The caller
// whose script returns 1 owns that firing, so several workers can promote
// the same queue without firing a job twice.
var claimScript = redis.NewScript(`
local score = redis.call('ZSCORE', KEYS[1], ARGV[1])
if score and tonumber(score) <= tonumber(ARGV[2]) then
	redis.call('ZADD', KEYS[1], ARGV[3], ARGV[1])
	return 1
end
return 0
`)

// promoteDue moves repeatables whose fire time has passed onto the wait list.
func (q *RedisQueue) promoteDue(ctx context.Context, queueName string) error {
	now := q.now()
	nowMs := now.UnixMilli()
	due, err := q.rdb.ZRangeByScore(ctx, delayedKey(queueName), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(nowMs, 10),
	}).Result()
	if err != nil {
		return err
	}

	for _, key := range due {
		raw, err := q.rdb.HGet(ctx, repeatKey(queueName), key).Result()
		if errors.Is(err, redis.Nil) {
			q.rdb.ZRem(ctx, delayedKey(queueName), key)
			continue
		}
		if err != nil {
			return err
		}

		var r Repeatable
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			log.Printf("[QUEUE] Dropping unreadable repeatable %s: %v", key, err)
			q.rdb.ZRem(ctx, delayedKey(queueName), key)
			continue
		}
		next, err := nextRun(r.Cron, now)
		if err != nil {
			log.Printf("[QUEUE] Dropping repeatable %s: %v", key, err)
			q.rdb.ZRem(ctx, delayedKey(queueName), key)
			continue
		}

		claimed, err := claimScript.Run(ctx, q.rdb, []string{delayedKey(queueName)}, key, nowMs, next.UnixMilli()).Int()
		if err != nil {
			return err
		}
		if claimed == 0 {
			continue
		}

		msg := Message{ID: uuid.NewString(), Queue: queueName, Name: r.Name, Repeat: true, EnqueuedAt: now.UTC()}
		if err := q.push(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context, queueName string, handler Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := q.promoteDue(ctx, queueName); err != nil && ctx.Err() == nil {
			log.Printf("[QUEUE] Error promoting due jobs on %s: %v", queueName, err)
		}

		res, err := q.rdb.BRPop(ctx, q.BlockTimeout, waitKey(queueName)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[QUEUE] Error reading from %s: %v", queueName, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			log.Printf("[QUEUE] Dropping unreadable job on %s: %v", queueName, err)
			continue
		}
		handler(msg)
	}
}

func (q *RedisQueue) PublishControl(ctx context.Context, command string) error {
	return q.rdb.Publish(ctx, controlChannel, command).Err()
}

// SubscribeControl delivers control commands until ctx is done or the
// returned close function is called.
func (q *RedisQueue) SubscribeControl(ctx context.Context) (<-chan string, func() error, error) {
	sub := q.rdb.Subscribe(ctx, controlChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribe control channel: %w", err)
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		for m := range sub.Channel() {
			select {
			case out <- m.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Close, nil
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
