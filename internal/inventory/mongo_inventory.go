package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/domain"
)

type mongoQuery struct {
	collection *mongo.Collection
}

func NewMongoQuery(db *mongo.Database) Query {
	return &mongoQuery{
		collection: db.Collection("products"),
	}
}

func (q *mongoQuery) AvailableQuantity(ctx context.Context, productID primitive.ObjectID) (int, error) {
	var product domain.Product

	filter := bson.M{"_id": productID}
	err := q.collection.FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get product stock: %w", err)
	}

	if !product.IsValid {
		return 0, nil
	}
	return product.Quantity, nil
}

func (q *mongoQuery) FindValid(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Product, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]domain.Product{}, nil
	}

	filter := bson.M{
		"_id":      bson.M{"$in": ids},
		"is_valid": true,
	}
	cursor, err := q.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make(map[primitive.ObjectID]domain.Product, len(ids))
	for cursor.Next(ctx) {
		var product domain.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products[product.ID] = product
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}
