package mongo

import (
	"context"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type categoryRepo struct {
	coll *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) repository.CategoryRepository {
	return &categoryRepo{coll: db.Collection(categoriesCollection)}
}

func (r *categoryRepo) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.coll.InsertOne(ctx, c)
	return mapError(err)
}

func (r *categoryRepo) Update(ctx context.Context, c *domain.Category) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	return mapError(err)
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *categoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	found, err := findOne(ctx, r.coll, bson.M{"_id": id}, &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := bson.M{}
	if activeOnly {
		query["isActive"] = true
	}
	cur, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []domain.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug, "_id": bson.M{"$ne": excludeID}})
	return n > 0, err
}
