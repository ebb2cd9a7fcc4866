package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/domain"
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
//
// Every method honors a Mongo session carried by ctx, so the service
// layer can compose several calls into one transaction.
type CartRepository interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem) error
	SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	IncrementItem(ctx context.Context, userID, productID primitive.ObjectID, delta int) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	DeleteCart(ctx context.Context, userID primitive.ObjectID) error
}
