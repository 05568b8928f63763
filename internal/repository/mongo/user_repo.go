package mongo

import (
	"context"
	"regexp"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepo struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepo{coll: db.Collection(usersCollection)}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return mapError(err)
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	return mapError(err)
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	found, err := findOne(ctx, r.coll, bson.M{"_id": id}, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	found, err := findOne(ctx, r.coll, bson.M{"email": email}, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	query := bson.M{}
	if filter.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"firstName": rx},
			bson.M{"lastName": rx},
			bson.M{"email": rx},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := pageOptions(filter.Page, filter.Limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	opts.SetProjection(bson.M{"password": 0})
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}

	users := []domain.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

