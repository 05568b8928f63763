package mongo

import (
	"context"
	"time"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type productRepo struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productRepo{coll: db.Collection(productsCollection)}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.coll.InsertOne(ctx, p)
	return mapError(err)
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	update, err := productUpdate(p)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	return mapError(err)
}

// productUpdate builds a pipeline update that writes every field but
// quantity as a literal and derives status from the quantity already stored,
// so a concurrent reservation that emptied the product is not undone.
func productUpdate(p *domain.Product) (mongo.Pipeline, error) {
	raw, err := bson.Marshal(p)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	set := bson.D{}
	for _, e := range doc {
		switch e.Key {
		case "_id", "quantity", "createdAt", "status":
			continue
		}
		set = append(set, bson.E{Key: e.Key, Value: bson.M{"$literal": e.Value}})
	}
	set = append(set, bson.E{Key: "status", Value: statusExpr("$quantity", p.Status)})

	return mongo.Pipeline{{{Key: "$set", Value: set}}}, nil
}

// statusExpr mirrors Product.SyncStatus: empty stock is out_of_stock and a
// restocked out_of_stock product is active again.
func statusExpr(qty any, current any) bson.M {
	return bson.M{"$switch": bson.M{
		"branches": bson.A{
			bson.M{"case": bson.M{"$eq": bson.A{qty, 0}}, "then": domain.ProductOutOfStock},
			bson.M{
				"case": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{current, domain.ProductOutOfStock}},
					bson.M{"$gt": bson.A{qty, 0}},
				}},
				"then": domain.ProductActive,
			},
		},
		"default": current,
	}}
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	found, err := findOne(ctx, r.coll, bson.M{"_id": id}, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var p domain.Product
	found, err := findOne(ctx, r.coll, bson.M{"slug": slug}, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	out := []domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"slug": slug, "_id": bson.M{"$ne": excludeID}})
	return n > 0, err
}

func (r *productRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Featured {
		query["featured"] = true
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.Search != "" {
		query["$text"] = bson.M{"$search": f.Search}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := pageOptions(f.Page, f.Limit).SetSort(sortFor(f.Sort))
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}

	products := []domain.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func sortFor(s domain.ProductSort) bson.D {
	switch s {
	case domain.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case domain.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	case domain.SortNameAsc:
		return bson.D{{Key: "name", Value: 1}}
	case domain.SortNameDesc:
		return bson.D{{Key: "name", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func (r *productRepo) AdjustStock(ctx context.Context, id string, delta int) (bool, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	return r.adjust(ctx, filter, delta)
}

func (r *productRepo) ReserveStock(ctx context.Context, id string, qty int) (bool, error) {
	return r.adjust(ctx, reserveFilter(id, qty), -qty)
}

func reserveFilter(id string, qty int) bson.M {
	return bson.M{
		"_id":      id,
		"status":   domain.ProductActive,
		"quantity": bson.M{"$gte": qty},
	}
}

// adjust runs a single pipeline update so the guard, the new quantity and
// the derived status are evaluated against the same document.
func (r *productRepo) adjust(ctx context.Context, filter bson.M, delta int) (bool, error) {
	newQty := bson.M{"$add": bson.A{"$quantity", delta}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "quantity", Value: newQty},
			{Key: "status", Value: statusExpr(newQty, "$status")},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
