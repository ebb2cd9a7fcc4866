package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/cache"
	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/repository"
)

// OrderConsumer empties a user's cart once their order is placed. The
// order service publishes to order-placed after it has decremented stock;
// a cart that is already gone is fine.
type OrderConsumer struct {
	repo   repository.CartRepository
	reader *kafka.Reader
	cache  cache.CartCache
}

func NewOrderConsumer(repo repository.CartRepository, cartCache cache.CartCache, brokers ...string) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-placed",
		GroupID:  "cart-service-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &OrderConsumer{repo: repo, reader: reader, cache: cartCache}
}

func (c *OrderConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("error reading message: %v", err)
			}
			continue
		}

		c.handleMessage(ctx, m.Value)
	}
}

func (c *OrderConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing reader: %v", err)
	}
}

type orderPlacedEvent struct {
	UserID string `json:"user_id"`
}

func (c *OrderConsumer) handleMessage(ctx context.Context, value []byte) {
	var event orderPlacedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}

	uid, err := primitive.ObjectIDFromHex(event.UserID)
	if err != nil {
		log.Printf("missing or invalid user_id %q", event.UserID)
		return
	}

	if err := c.repo.DeleteCart(ctx, uid); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("failed to delete cart: %v", err)
	}

	if err := c.cache.Delete(ctx, event.UserID); err != nil {
		log.Printf("failed to delete cache: %v", err)
	}
}
