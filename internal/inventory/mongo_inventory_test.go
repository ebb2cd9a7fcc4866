package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/domain"
	"github.com/iamshreyas-06/ARTISAN-SPACE-sub000/internal/repository"
)

func setupTestDB(t *testing.T) (Query, *mongo.Database, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := repository.ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return NewMongoQuery(db), db, cleanup
}

func seedProduct(t *testing.T, db *mongo.Database, product domain.Product) {
	t.Helper()
	_, err := db.Collection("products").InsertOne(context.Background(), product)
	require.NoError(t, err)
}

func TestAvailableQuantity(t *testing.T) {
	query, db, cleanup := setupTestDB(t)
	defer cleanup()

	productID := primitive.NewObjectID()
	seedProduct(t, db, domain.Product{ID: productID, Name: "woven basket", Quantity: 12, IsValid: true})

	qty, err := query.AvailableQuantity(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 12, qty)
}

func TestAvailableQuantity_MissingProduct(t *testing.T) {
	query, _, cleanup := setupTestDB(t)
	defer cleanup()

	qty, err := query.AvailableQuantity(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestAvailableQuantity_InvalidatedProduct(t *testing.T) {
	query, db, cleanup := setupTestDB(t)
	defer cleanup()

	productID := primitive.NewObjectID()
	seedProduct(t, db, domain.Product{ID: productID, Quantity: 12, IsValid: false})

	qty, err := query.AvailableQuantity(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestFindValid_FiltersInvalid(t *testing.T) {
	query, db, cleanup := setupTestDB(t)
	defer cleanup()

	valid := primitive.NewObjectID()
	invalid := primitive.NewObjectID()
	missing := primitive.NewObjectID()
	seedProduct(t, db, domain.Product{ID: valid, Name: "teapot", Quantity: 2, IsValid: true})
	seedProduct(t, db, domain.Product{ID: invalid, Name: "retired", Quantity: 9, IsValid: false})

	products, err := query.FindValid(context.Background(), []primitive.ObjectID{valid, invalid, missing})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "teapot", products[valid].Name)
}

func TestFindValid_EmptyInput(t *testing.T) {
	query, _, cleanup := setupTestDB(t)
	defer cleanup()

	products, err := query.FindValid(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}
