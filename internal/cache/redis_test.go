package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/domain"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	// Create an in-memory Redis server
	mr := miniredis.RunT(t)

	// Create Redis client pointing to miniredis
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	// Create cache instance
	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testCart(userID string) *domain.Cart {
	uid, _ := primitive.ObjectIDFromHex(userID)
	return &domain.Cart{
		UserID: uid,
		Items: []domain.CartItem{
			{ProductID: primitive.NewObjectID(), Quantity: 2},
			{ProductID: primitive.NewObjectID(), Quantity: 3},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := primitive.NewObjectID().Hex()
	cart := testCart(userID)

	// Manually set data in miniredis
	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(userID), string(cartJSON))

	result, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, result.UserID)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 2, result.Items[0].Quantity)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestSet_ThenGet(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := primitive.NewObjectID().Hex()
	cart := testCart(userID)

	err := cache.Set(ctx, userID, cart)
	require.NoError(t, err)

	result, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, result.UserID)
	assert.Len(t, result.Items, 2)
}

func TestSet_AppliesTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	userID := primitive.NewObjectID().Hex()
	err := cache.Set(context.Background(), userID, testCart(userID))
	require.NoError(t, err)

	ttl := mr.TTL(cacheKey(userID))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)
}

func TestDelete(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := primitive.NewObjectID().Hex()

	require.NoError(t, cache.Set(ctx, userID, testCart(userID)))
	require.NoError(t, cache.Delete(ctx, userID))

	_, err := cache.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestBreakerCache_PassesThrough(t *testing.T) {
	inner, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewBreakerCache(inner)
	ctx := context.Background()
	userID := primitive.NewObjectID().Hex()

	require.NoError(t, cache.Set(ctx, userID, testCart(userID)))

	result, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestBreakerCache_MissDoesNotTrip(t *testing.T) {
	inner, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewBreakerCache(inner)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := cache.Get(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrCacheMiss)
	}
}

func TestBreakerCache_OpenReportsMiss(t *testing.T) {
	inner, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewBreakerCache(inner)
	ctx := context.Background()
	userID := primitive.NewObjectID().Hex()

	// Kill the backing redis so every call is an infrastructure failure.
	mr.Close()

	for i := 0; i < 6; i++ {
		cache.Get(ctx, userID)
	}

	// Breaker is open now; reads degrade to a miss instead of an error.
	_, err := cache.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
