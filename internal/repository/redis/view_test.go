package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
)

func setupTestRedis(t *testing.T) (*ViewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewViewCache(client, 10*time.Minute), mr
}

func sampleView() *catalog.Product {
	price := 19.99
	raw := &catalog.RawProduct{
		ID:        "1",
		Title:     "Runner",
		Slug:      "runner",
		BasePrice: &price,
		Category:  &catalog.RawCategory{ID: "3", Name: "Shoes", Slug: "shoes"},
		Variants: []catalog.RawVariant{{
			ID:        "v1",
			ColorName: "Blue",
			HexCode:   "#00f",
			Sizes:     []catalog.RawSize{{ID: "s1", SizeLabel: "M", Stock: 4}},
			Images:    []catalog.RawImage{{}},
		}},
	}
	return catalog.Normalize(raw)
}

func TestViewCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	view := sampleView()

	require.NoError(t, cache.Set(ctx, "runner", view))

	assert.True(t, mr.Exists("product_view:runner"))
	assert.Equal(t, 10*time.Minute, mr.TTL("product_view:runner"))

	got, err := cache.Get(ctx, "runner")
	require.NoError(t, err)
	assert.Equal(t, view, got)
}

func TestViewCache_Get_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	got, err := cache.Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestViewCache_Get_CorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("product_view:bad", "{not json"))

	got, err := cache.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestViewCache_Get_RedisDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "runner")
	assert.Error(t, err)
}

func TestViewCache_Set_RequiresSlugAndProduct(t *testing.T) {
	cache, _ := setupTestRedis(t)

	assert.Error(t, cache.Set(context.Background(), "runner", nil))
	assert.Error(t, cache.Set(context.Background(), "", &catalog.Product{}))
}

func TestViewCache_Expiry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "runner", sampleView()))

	mr.FastForward(11 * time.Minute)

	got, err := cache.Get(ctx, "runner")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestViewCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "runner", sampleView()))

	require.NoError(t, cache.Delete(ctx, "runner"))
	assert.False(t, mr.Exists("product_view:runner"))

	require.NoError(t, cache.Delete(ctx, "runner"))
}

func TestViewCache_StoresCanonicalJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, cache.Set(context.Background(), "runner", sampleView()))

	stored, err := mr.Get("product_view:runner")
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(stored), &fields))
	assert.Equal(t, "$19.99", fields["priceFormatted"])
	assert.Equal(t, catalog.DefaultTagline, fields["tagline"])
}

func TestKey(t *testing.T) {
	assert.Equal(t, "product_view:trail-runner", Key("trail-runner"))
}
