package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/planner"
	"github.com/patrickmn/go-cache"
)

// CachedClient memoizes successful completions by prompt. Failures are never
// cached so the next request tries the model again.
type CachedClient struct {
	next  planner.Model
	cache *cache.Cache
}

func NewCachedClient(next planner.Model, ttl time.Duration) *CachedClient {
	return &CachedClient{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedClient) Generate(ctx context.Context, prompt string) (string, error) {
	key := promptKey(prompt)
	if text, ok := c.cache.Get(key); ok {
		return text.(string), nil
	}

	text, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.cache.SetDefault(key, text)
	return text, nil
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
