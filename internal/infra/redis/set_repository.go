package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"trivia-quiz-service/internal/domain"
)

// SetLoader fetches quiz sets from a backing store (e.g. Postgres).
type SetLoader interface {
	LoadSet(ctx context.Context, name string) (domain.QuizSet, error)
}

// SetRepository caches whole quiz sets as JSON in Redis
// (SET quiz:set:{name}) and falls back to a loader on cache miss.
type SetRepository struct {
	client *redis.Client
	loader SetLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewSetRepository(client *redis.Client, loader SetLoader, ttl time.Duration) *SetRepository {
	return &SetRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *SetRepository) GetSet(ctx context.Context, name string) (domain.QuizSet, error) {
	key := r.setKey(name)

	if set, ok := r.cached(ctx, key); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := r.cached(ctx, key); ok {
			return set, nil
		}

		set, err := r.loader.LoadSet(ctx, name)
		if err != nil {
			return domain.QuizSet{}, err
		}

		if raw, err := json.Marshal(set); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return set, nil
	})
	if err != nil {
		return domain.QuizSet{}, err
	}
	return result.(domain.QuizSet), nil
}

// cached reads the set from Redis; unreadable payloads count as a miss.
func (r *SetRepository) cached(ctx context.Context, key string) (domain.QuizSet, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.QuizSet{}, false
	}
	var set domain.QuizSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.QuizSet{}, false
	}
	return set, true
}

func (r *SetRepository) setKey(name string) string {
	return "quiz:set:" + name
}

func (r *SetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
