package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/locotek/presskit/internal/models"
)

// Redis keeps submissions in a sorted set scored by receipt time in
// milliseconds. Members are the JSON-encoded records. Records received in
// the same millisecond get fractional scores in arrival order.
type Redis struct {
	client *redis.Client
	key    string
}

// appendScript adds ARGV[3] scored at ARGV[1] ms, or just above the last
// member already stored in that millisecond (ARGV[2] is its exclusive upper
// bound).
var appendScript = redis.NewScript(`
local score = tonumber(ARGV[1])
local last = redis.call('ZREVRANGEBYSCORE', KEYS[1], ARGV[2], ARGV[1], 'WITHSCORES', 'LIMIT', 0, 1)
if #last == 2 then
	score = tonumber(last[2]) + 0.001
end
local formatted = string.format('%.3f', score)
redis.call('ZADD', KEYS[1], formatted, ARGV[3])
return formatted
`)

// NewRedis connects to a redis:// or rediss:// URL. A non-empty token
// overrides the password in the URL.
func NewRedis(rawURL, token, key string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if token != "" {
		opts.Password = token
	}
	return &Redis{client: redis.NewClient(opts), key: key}, nil
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Append adds rec atomically. Its score is strictly above that of any record
// appended earlier within the same millisecond.
func (r *Redis) Append(ctx context.Context, rec models.Submission) error {
	member, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	ms := rec.Timestamp.UnixMilli()
	args := []any{
		strconv.FormatInt(ms, 10),
		"(" + strconv.FormatInt(ms+1, 10),
		string(member),
	}
	if err := appendScript.Run(ctx, r.client, []string{r.key}, args...).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", r.key, err)
	}
	return nil
}

// List returns every record in score order.
func (r *Redis) List(ctx context.Context) ([]models.Submission, error) {
	members, err := r.client.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", r.key, err)
	}

	records := make([]models.Submission, 0, len(members))
	for _, m := range members {
		var rec models.Submission
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("decode member: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close releases the client connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
