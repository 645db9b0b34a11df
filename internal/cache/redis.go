package cache

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// indexKey is the Redis set tracking every video_ key, so the store can
// enumerate them without a SCAN over the whole keyspace.
const indexKey = "all_video_keys"

// RedisStore backs the cache with Redis. Writes to video_ keys keep the
// secondary index set in the same MULTI/EXEC pipeline as the write itself,
// so concurrent set/delete calls cannot lose an index update.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{rdb: rdb}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Cache get error for %s: %v", key, err)
		}
		return nil, false
	}
	return val, true
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	pipe := r.rdb.TxPipeline()
	if strings.HasPrefix(key, VideoKeyPrefix) {
		pipe.SAdd(ctx, indexKey, key)
	}
	pipe.Set(ctx, key, value, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Cache set error for %s: %v", key, err)
		return false
	}
	return true
}

func (r *RedisStore) Delete(ctx context.Context, key string) bool {
	pipe := r.rdb.TxPipeline()
	if strings.HasPrefix(key, VideoKeyPrefix) {
		pipe.SRem(ctx, indexKey, key)
	}
	pipe.Del(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Cache delete error for %s: %v", key, err)
		return false
	}
	return true
}

func (r *RedisStore) Keys(ctx context.Context, prefix string) []string {
	// The video_ namespace is served from the index set. A cached record can
	// expire while its index entry lingers, so membership is re-checked.
	if prefix == VideoKeyPrefix {
		members, err := r.rdb.SMembers(ctx, indexKey).Result()
		if err != nil {
			log.Printf("Cache keys error: %v", err)
			return nil
		}

		var keys []string
		for _, key := range members {
			exists, err := r.rdb.Exists(ctx, key).Result()
			if err != nil {
				log.Printf("Cache exists error for %s: %v", key, err)
				continue
			}
			if exists == 0 {
				r.rdb.SRem(ctx, indexKey, key)
				continue
			}
			keys = append(keys, key)
		}
		return keys
	}

	iter := r.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("Cache scan error: %v", err)
		return nil
	}
	return keys
}
