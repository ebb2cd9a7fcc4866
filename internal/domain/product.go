package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is the catalog entry the cart references. The cart service only
// reads it; stock decrements happen at order placement.
type Product struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	PriceCents int64              `bson:"price_cents" json:"price_cents"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	IsValid    bool               `bson:"is_valid" json:"is_valid"`
}

// ResolvedItem is one cart line with its product reference resolved,
// as returned to cart readers. Lines whose product is missing or
// invalidated never appear in a resolved view.
type ResolvedItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
