package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const dedupeKeyPrefix = "movementpass:ingest:loaded:"

// RedisDeduper remembers which stream records were already loaded so a
// redelivered batch does not create the same passes twice under new ids.
// A record is identified by its stream position and payload together.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper builds a deduper whose markers expire after ttl.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// FilterNew returns the records that have no loaded marker, in order.
func (d *RedisDeduper) FilterNew(ctx context.Context, records []RawRecord) ([]RawRecord, error) {
	if len(records) == 0 {
		return records, nil
	}

	pipe := d.client.Pipeline()
	checks := make([]*redis.IntCmd, len(records))
	for i, rec := range records {
		checks[i] = pipe.Exists(ctx, markerKey(rec))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("check loaded markers: %w", err)
	}

	fresh := make([]RawRecord, 0, len(records))
	for i, rec := range records {
		if checks[i].Val() == 0 {
			fresh = append(fresh, rec)
		}
	}
	return fresh, nil
}

// MarkLoaded stores a marker for every record. Call it only after the
// records' passes are durable.
func (d *RedisDeduper) MarkLoaded(ctx context.Context, records []RawRecord) error {
	if len(records) == 0 {
		return nil
	}

	pipe := d.client.Pipeline()
	for _, rec := range records {
		pipe.SetNX(ctx, markerKey(rec), "1", d.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write loaded markers: %w", err)
	}
	return nil
}

func markerKey(rec RawRecord) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(rec.Key))
	h.Write([]byte{0})
	h.Write(rec.Data)
	return dedupeKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
