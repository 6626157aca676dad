package cache

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/doublesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryCache(t *testing.T, opts ...Option) *TranslationCache {
	t.Helper()
	cache, err := Open("", true, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func sampleFilter(t *testing.T) *core.Filter {
	t.Helper()
	filter, err := core.ValidateFilter(map[string]any{
		"products": map[string]any{
			"Property":    map[string]any{"min": 200000},
			"BankAccount": map[string]any{"exists": true},
			"Insurance":   map[string]any{"equals": 150},
		},
	})
	require.NoError(t, err)
	return filter
}

func TestCache_PutAndGet(t *testing.T) {
	cache := newMemoryCache(t)
	filter := sampleFilter(t)

	require.NoError(t, cache.Put(context.Background(), "savings and expensive property", filter))

	got, ok := cache.Get(context.Background(), "savings and expensive property")
	require.True(t, ok)
	assert.Equal(t, filter, got)
}

func TestCache_Miss(t *testing.T) {
	cache := newMemoryCache(t)

	got, ok := cache.Get(context.Background(), "never translated")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_KeyNormalization(t *testing.T) {
	cache := newMemoryCache(t)
	filter := sampleFilter(t)

	require.NoError(t, cache.Put(context.Background(), "Savings And Property", filter))

	// Case and surrounding whitespace do not change the key.
	got, ok := cache.Get(context.Background(), "  savings and property ")
	require.True(t, ok)
	assert.Equal(t, filter, got)
}

func TestCache_EmptyFilterRoundTrip(t *testing.T) {
	cache := newMemoryCache(t)

	require.NoError(t, cache.Put(context.Background(), "anything at all", core.NewFilter()))

	got, ok := cache.Get(context.Background(), "anything at all")
	require.True(t, ok)
	assert.True(t, got.Empty())
}

func TestCache_NilFilterRejected(t *testing.T) {
	cache := newMemoryCache(t)

	err := cache.Put(context.Background(), "query", nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCache_Expiry(t *testing.T) {
	cache := newMemoryCache(t, WithTTL(time.Millisecond))
	filter := sampleFilter(t)

	require.NoError(t, cache.Put(context.Background(), "short lived", filter))
	time.Sleep(10 * time.Millisecond)

	_, ok := cache.Get(context.Background(), "short lived")
	assert.False(t, ok)
}

func TestCache_CancelledContext(t *testing.T) {
	cache := newMemoryCache(t)
	filter := sampleFilter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, cache.Put(ctx, "query", filter), context.Canceled)

	_, ok := cache.Get(ctx, "query")
	assert.False(t, ok)
}

func TestFilterSerialization_RoundTrip(t *testing.T) {
	filter := sampleFilter(t)

	data := MarshalFilter(filter)
	got, err := UnmarshalFilter(data)
	require.NoError(t, err)
	assert.Equal(t, filter, got)
}

func TestFilterSerialization_Deterministic(t *testing.T) {
	filter := sampleFilter(t)

	first := MarshalFilter(filter)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, MarshalFilter(filter))
	}
}

func TestFilterSerialization_CorruptData(t *testing.T) {
	// One entry announced, then truncated bytes.
	_, err := UnmarshalFilter([]byte{0x02, 0xff})
	assert.Error(t, err)

	// Negative entry count.
	_, err = UnmarshalFilter([]byte{0x01})
	assert.ErrorIs(t, err, ErrMalformedFilter)
}
