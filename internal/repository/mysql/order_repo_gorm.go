package mysql

import (
	"context"
	"time"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *domain.Order) error {
	return mapError(r.db.WithContext(ctx).Create(o).Error)
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *orderRepo) FindByPaymentIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	return r.findOne(ctx, "payment_stripe_payment_intent_id = ?", intentID)
}

func (r *orderRepo) findOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&o).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) List(ctx context.Context, page, limit int) ([]domain.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []domain.Order{}
	err := r.db.WithContext(ctx).Scopes(paginate(page, limit)).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *orderRepo) TransitionStatus(ctx context.Context, id string, from []domain.OrderStatus, to domain.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) UpdatePayment(ctx context.Context, id string, p domain.PaymentInfo, status domain.OrderStatus) error {
	values := map[string]any{
		"payment_method":                   p.Method,
		"payment_status":                   p.Status,
		"payment_stripe_payment_intent_id": p.StripePaymentIntentID,
		"payment_paid_at":                  p.PaidAt,
		"updated_at":                       time.Now(),
	}
	if status != "" {
		values["status"] = status
	}
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Order not found")
	}
	return nil
}

func (r *orderRepo) MarkPaymentFailed(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status <> ?", id, domain.PaymentCompleted).
		Updates(map[string]any{"payment_status": domain.PaymentFailed, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AddTrackingUpdate rewrites the JSON history under a row lock so
// concurrent appends are not lost.
func (r *orderRepo) AddTrackingUpdate(ctx context.Context, id string, u domain.TrackingUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&o).Error
		if notFound(err) {
			return domain.NotFound("Order not found")
		}
		if err != nil {
			return err
		}
		o.TrackingUpdates = append(o.TrackingUpdates, u)
		o.UpdatedAt = time.Now()
		return tx.Select("tracking_updates", "updated_at").Updates(&o).Error
	})
}

type sequenceRepo struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) repository.SequenceRepository {
	return &sequenceRepo{db: db}
}

// Next upserts the counter row and reads it back in the same transaction;
// the upsert holds the row lock until commit.
func (r *sequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	var c counter
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			DoUpdates: clause.Assignments(map[string]any{"seq": gorm.Expr("seq + 1")}),
		}).Create(&counter{Name: name, Seq: 1}).Error
		if err != nil {
			return err
		}
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).Take(&c).Error
	})
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}
