package mongo

import (
	"context"
	"errors"
	"fmt"

	"greenmart/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection      = "users"
	productsCollection   = "products"
	categoriesCollection = "categories"
	cartsCollection      = "carts"
	wishlistsCollection  = "wishlists"
	ordersCollection     = "orders"
	countersCollection   = "counters"
)

// EnsureIndexes creates the unique and text indexes the stores rely on.
// It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "tags", Value: "text"}}},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		cartsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: unique},
		},
		wishlistsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: unique},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "paymentInfo.stripePaymentIntentId", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}

// findOne decodes the first match into out. It reports false when nothing
// matched so callers can return (nil, nil).
func findOne(ctx context.Context, coll *mongo.Collection, filter any, out any) (bool, error) {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func pageOptions(page, limit int) *options.FindOptions {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
		if page > 1 {
			opts.SetSkip(int64((page - 1) * limit))
		}
	}
	return opts
}
