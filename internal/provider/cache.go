package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// EmbedCache memoizes embeddings in Redis, keyed by model and text hash.
// Cache failures degrade to a provider call; they never fail the request.
type EmbedCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewEmbedCache(client *redisv9.Client, ttl time.Duration) *EmbedCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &EmbedCache{client: client, ttl: ttl}
}

func (c *EmbedCache) get(ctx context.Context, key string) ([]float32, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("embed cache get failed: %v", err)
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (c *EmbedCache) set(ctx context.Context, key string, vec []float32) {
	payload, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Printf("embed cache set failed: %v", err)
	}
}

func embedCacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embed:%s:%s", model, hex.EncodeToString(sum[:]))
}

// CachedEmbedder wraps an Embedder with the Redis cache. Used when the
// assistant's performance settings enable embedding caching.
type CachedEmbedder struct {
	inner Embedder
	cache *EmbedCache
	model string
}

func NewCachedEmbedder(inner Embedder, cache *EmbedCache, model string) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, model: model}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch serves hits from the cache and fetches only the misses, keeping
// the provider call count at or below the uncached path.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		if vec, ok := e.cache.get(ctx, embedCacheKey(e.model, text)); ok {
			result[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return result, nil
	}

	fetched, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missTexts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(fetched), len(missTexts))
	}
	for j, i := range missIdx {
		result[i] = fetched[j]
		e.cache.set(ctx, embedCacheKey(e.model, texts[i]), fetched[j])
	}
	return result, nil
}
