package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

// AnalysisCache stores case analyses keyed by Fingerprint.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (claims.CaseAnalysis, bool, error)
	Set(ctx context.Context, key string, a claims.CaseAnalysis) error
	Ping(ctx context.Context) error
}

// Fingerprint identifies an analysis input: the normalized case plus the
// knowledge base version it would be scored against.
func Fingerprint(ec claims.ExtractedCase, knowledgeVersion string) (string, error) {
	blob, err := json.Marshal(ec)
	if err != nil {
		return "", fmt.Errorf("fingerprint case: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(knowledgeVersion))
	h.Write([]byte{0})
	h.Write(blob)
	return hex.EncodeToString(h.Sum(nil)), nil
}

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type Option func(*RedisCache)

func WithPrefix(prefix string) Option {
	return func(c *RedisCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) { c.ttl = ttl }
}

func NewRedisCache(client *redis.Client, opts ...Option) *RedisCache {
	c := &RedisCache{client: client, prefix: "claims:analysis:", ttl: time.Hour}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, key string) (claims.CaseAnalysis, bool, error) {
	blob, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return claims.CaseAnalysis{}, false, nil
		}
		return claims.CaseAnalysis{}, false, fmt.Errorf("cache get: %w", err)
	}
	var a claims.CaseAnalysis
	if err := json.Unmarshal(blob, &a); err != nil {
		return claims.CaseAnalysis{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return a, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, a claims.CaseAnalysis) error {
	blob, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, blob, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Noop never hits. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (claims.CaseAnalysis, bool, error) {
	return claims.CaseAnalysis{}, false, nil
}

func (Noop) Set(context.Context, string, claims.CaseAnalysis) error { return nil }

func (Noop) Ping(context.Context) error { return nil }
