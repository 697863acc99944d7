package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/web/session"
	"github.com/redis/go-redis/v9"
)

const flashTTL = time.Minute

// SessionStore keeps session records under session:<id> and a flash queue under
// session:<id>:flash.
type SessionStore struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(rdb *redis.Client, expTime time.Duration) SessionStore {
	return SessionStore{
		rdb:     rdb,
		expTime: expTime,
	}
}

func (ss SessionStore) Save(ctx context.Context, id string, rec session.Record) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, err := ss.rdb.Set(ctx, recordKey(id), recJSON, ss.expTime).Result(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (ss SessionStore) Load(ctx context.Context, id string) (session.Record, error) {
	recJSON, err := ss.rdb.Get(ctx, recordKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return session.Record{}, session.ErrNoSession
	} else if err != nil {
		return session.Record{}, fmt.Errorf("get error: %w", err)
	}

	var rec session.Record

	if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
		return session.Record{}, fmt.Errorf("unmarshal error: %w", err)
	}

	return rec, nil
}

func (ss SessionStore) Delete(ctx context.Context, id string) error {
	deleted, err := ss.rdb.Del(ctx, recordKey(id)).Result()
	if err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	if deleted == 0 {
		return session.ErrNoSession
	}

	return nil
}

func (ss SessionStore) PushFlash(ctx context.Context, id string, f session.Flash) error {
	flashJSON, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	key := flashKey(id)

	_, err = ss.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, flashJSON)
		p.Expire(ctx, key, flashTTL)

		return nil
	})
	if err != nil {
		return fmt.Errorf("rpush error: %w", err)
	}

	return nil
}

// PopFlashes returns and clears the queued flashes in push order.
func (ss SessionStore) PopFlashes(ctx context.Context, id string) ([]session.Flash, error) {
	key := flashKey(id)

	var lrange *redis.StringSliceCmd

	_, err := ss.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		lrange = p.LRange(ctx, key, 0, -1)
		p.Del(ctx, key)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lrange error: %w", err)
	}

	items := lrange.Val()
	flashes := make([]session.Flash, 0, len(items))

	for _, item := range items {
		var f session.Flash

		if err := json.Unmarshal([]byte(item), &f); err != nil {
			return nil, fmt.Errorf("unmarshal error: %w", err)
		}

		flashes = append(flashes, f)
	}

	return flashes, nil
}

func recordKey(id string) string {
	return "session:" + id
}

func flashKey(id string) string {
	return "session:" + id + ":flash"
}
