package principal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists one record per key under a prefix, with a set of
// identities as the index. Records carry no TTL; expiry is an authorization
// attribute, not a storage lifetime.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore on the given client. prefix defaults
// to "goload" when empty.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "goload"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":principals"
}

func (s *RedisStore) recordKey(identity string) string {
	return s.prefix + ":principal:" + identity
}

// Load reads every indexed record in a single MGET round trip after the
// index fetch. An identity in the index whose record key is missing or
// corrupt fails the load; a partially visible set would silently drop
// authorizations.
func (s *RedisStore) Load(ctx context.Context) (Set, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("load principal index: %w", err)
	}
	set := make(Set, len(ids))
	if len(ids) == 0 {
		return set, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load principal records: %w", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("principal record %s missing from index", ids[i])
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode principal record %s: %w", ids[i], err)
		}
		set[ids[i]] = rec
	}
	return set, nil
}

// Save replaces the stored set transactionally: stale records are deleted,
// the index is rebuilt, and every record is rewritten in one pipeline.
func (s *RedisStore) Save(ctx context.Context, set Set) error {
	stale, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("read principal index: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range stale {
		if _, keep := set[id]; !keep {
			pipe.Del(ctx, s.recordKey(id))
		}
	}
	pipe.Del(ctx, s.indexKey())
	for id, rec := range set {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode principal record %s: %w", id, err)
		}
		pipe.Set(ctx, s.recordKey(id), data, 0)
		pipe.SAdd(ctx, s.indexKey(), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save principal set: %w", err)
	}
	return nil
}
