package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is the stored document: one per user, at most one line item per product.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Items     []CartItem         `bson:"items"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id"`
	Quantity  int                `bson:"quantity"`
	AddedAt   time.Time          `bson:"added_at"`
}

// Quantity returns the stored quantity for a product, 0 when absent.
func (c *Cart) Quantity(productID primitive.ObjectID) int {
	if c == nil {
		return 0
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Len is the number of distinct line items, 0 for a missing cart.
func (c *Cart) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}
