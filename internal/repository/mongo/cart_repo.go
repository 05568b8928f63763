package mongo

import (
	"context"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cartRepo struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) repository.CartRepository {
	return &cartRepo{coll: db.Collection(cartsCollection)}
}

func (r *cartRepo) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	found, err := findOne(ctx, r.coll, bson.M{"user": userID}, &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) Save(ctx context.Context, c *domain.Cart) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"user": c.UserID}, c, options.Replace().SetUpsert(true))
	return mapError(err)
}

type wishlistRepo struct {
	coll *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) repository.WishlistRepository {
	return &wishlistRepo{coll: db.Collection(wishlistsCollection)}
}

func (r *wishlistRepo) FindByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var w domain.Wishlist
	found, err := findOne(ctx, r.coll, bson.M{"user": userID}, &w)
	if err != nil || !found {
		return nil, err
	}
	return &w, nil
}

func (r *wishlistRepo) Save(ctx context.Context, w *domain.Wishlist) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"user": w.UserID}, w, options.Replace().SetUpsert(true))
	return mapError(err)
}
