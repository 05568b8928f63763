package mongo

import (
	"context"
	"time"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepo struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &orderRepo{coll: db.Collection(ordersCollection)}
}

func (r *orderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.coll.InsertOne(ctx, o)
	return mapError(err)
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	found, err := findOne(ctx, r.coll, bson.M{"_id": id}, &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByPaymentIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	var o domain.Order
	found, err := findOne(ctx, r.coll, bson.M{"paymentInfo.stripePaymentIntentId": intentID}, &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	out := []domain.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) List(ctx context.Context, page, limit int) ([]domain.Order, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []domain.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *orderRepo) TransitionStatus(ctx context.Context, id string, from []domain.OrderStatus, to domain.OrderStatus) (bool, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *orderRepo) UpdatePayment(ctx context.Context, id string, payment domain.PaymentInfo, status domain.OrderStatus) error {
	set := bson.M{"paymentInfo": payment, "updatedAt": time.Now()}
	if status != "" {
		set["status"] = status
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("Order not found")
	}
	return nil
}

func (r *orderRepo) MarkPaymentFailed(ctx context.Context, id string) (bool, error) {
	filter := bson.M{"_id": id, "paymentInfo.status": bson.M{"$ne": domain.PaymentCompleted}}
	update := bson.M{"$set": bson.M{"paymentInfo.status": domain.PaymentFailed, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *orderRepo) AddTrackingUpdate(ctx context.Context, id string, u domain.TrackingUpdate) error {
	update := bson.M{
		"$push": bson.M{"trackingUpdates": u},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("Order not found")
	}
	return nil
}

type sequenceRepo struct {
	coll *mongo.Collection
}

func NewSequenceRepository(db *mongo.Database) repository.SequenceRepository {
	return &sequenceRepo{coll: db.Collection(countersCollection)}
}

func (r *sequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
