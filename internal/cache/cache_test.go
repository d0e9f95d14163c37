package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

func newTestCache(t *testing.T, opts ...Option) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, opts...), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, WithPrefix("test:"), WithTTL(time.Minute))
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	want := claims.CaseAnalysis{
		SuccessProbability: 0.83,
		PayoutEstimate:     claims.PayoutEstimate{Minimum: 1050, Expected: 1428.57, Maximum: 2142.86, Confidence: 0.85},
		RiskFactors:        []string{},
		StrengthFactors:    []string{"Identified coverage types enable targeted policy analysis"},
		SimilarCases:       []claims.SimilarityMatch{{ReferenceID: "HIST_001", SimilarityScore: 0.86, KeyFactors: []string{"precedent case"}}},
	}
	require.NoError(t, c.Set(ctx, "k", want))
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("claims:analysis:bad", "{not json"))
	_, ok, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestFingerprint(t *testing.T) {
	ec := claims.ExtractedCase{DocumentKind: claims.KindDenialLetter, MonetaryAmounts: []string{"$1"}}
	a, err := Fingerprint(ec, "v1")
	require.NoError(t, err)
	b, err := Fingerprint(ec, "v1")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := Fingerprint(ec, "v2")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	ec.ExtractionConfidence = 0.5
	changed, err := Fingerprint(ec, "v1")
	require.NoError(t, err)
	assert.NotEqual(t, a, changed)
}

func TestNoop(t *testing.T) {
	var c AnalysisCache = Noop{}
	require.NoError(t, c.Set(context.Background(), "k", claims.CaseAnalysis{SuccessProbability: 1}))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
