package inventory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/domain"
)

// Query is the product stock collaborator the cart service reads from.
// Implementations never mutate products. Both methods honor a Mongo
// session carried by ctx so stock reads can join the caller's transaction.
type Query interface {
	// AvailableQuantity returns the purchasable stock for a product.
	// A missing or invalidated product has 0 available stock.
	AvailableQuantity(ctx context.Context, productID primitive.ObjectID) (int, error)

	// FindValid resolves the given product IDs, returning only products
	// that exist and are still valid, keyed by ID.
	FindValid(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error)
}
