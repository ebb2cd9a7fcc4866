package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gotest.tools/v3/assert"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/cache"
	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/domain"
	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/repository"
)

type fakeRepo struct {
	mu      sync.Mutex
	deleted []primitive.ObjectID
	missing bool
}

func (f *fakeRepo) GetCart(context.Context, primitive.ObjectID) (*domain.Cart, error) {
	return nil, repository.ErrCartNotFound
}
func (f *fakeRepo) AddItem(context.Context, primitive.ObjectID, domain.CartItem) error { return nil }
func (f *fakeRepo) SetItemQuantity(context.Context, primitive.ObjectID, primitive.ObjectID, int) error {
	return nil
}
func (f *fakeRepo) IncrementItem(context.Context, primitive.ObjectID, primitive.ObjectID, int) error {
	return nil
}
func (f *fakeRepo) RemoveItem(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

func (f *fakeRepo) DeleteCart(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing {
		return repository.ErrCartNotFound
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeCache) Get(context.Context, string) (*domain.Cart, error) {
	return nil, cache.ErrCacheMiss
}
func (f *fakeCache) Set(context.Context, string, *domain.Cart) error { return nil }
func (f *fakeCache) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return nil
}

func TestHandleMessage_DeletesCartAndCache(t *testing.T) {
	repo := &fakeRepo{}
	cartCache := &fakeCache{}
	c := &OrderConsumer{repo: repo, cache: cartCache}

	userID := primitive.NewObjectID()
	payload, err := json.Marshal(orderPlacedEvent{UserID: userID.Hex()})
	require.NoError(t, err)

	c.handleMessage(context.Background(), payload)

	assert.Equal(t, 1, len(repo.deleted))
	assert.Equal(t, userID, repo.deleted[0])
	assert.Equal(t, 1, len(cartCache.deleted))
	assert.Equal(t, userID.Hex(), cartCache.deleted[0])
}

func TestHandleMessage_MissingCartIsFine(t *testing.T) {
	repo := &fakeRepo{missing: true}
	cartCache := &fakeCache{}
	c := &OrderConsumer{repo: repo, cache: cartCache}

	payload, _ := json.Marshal(orderPlacedEvent{UserID: primitive.NewObjectID().Hex()})
	c.handleMessage(context.Background(), payload)

	// Cache is still invalidated even when the cart was already gone.
	assert.Equal(t, 1, len(cartCache.deleted))
}

func TestHandleMessage_BadPayloadIgnored(t *testing.T) {
	repo := &fakeRepo{}
	cartCache := &fakeCache{}
	c := &OrderConsumer{repo: repo, cache: cartCache}

	c.handleMessage(context.Background(), []byte("{not json"))
	c.handleMessage(context.Background(), []byte(`{"user_id":"not-an-object-id"}`))

	assert.Equal(t, 0, len(repo.deleted))
	assert.Equal(t, 0, len(cartCache.deleted))
}
