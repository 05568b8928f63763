package mysql

import (
	"context"
	"time"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return mapError(r.db.WithContext(ctx).Create(p).Error)
}

// Update writes the fields and then derives status from the stored
// quantity inside one transaction, so a reservation that emptied the product
// meanwhile keeps it out_of_stock.
func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Select("*").Omit("quantity", "status", "created_at").Updates(p).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Product{}).Where("id = ?", p.ID).Update("status", statusExpr(p.Status)).Error
	})
	return mapError(err)
}

// statusExpr is Product.SyncStatus over the stored quantity, starting from
// the requested status.
func statusExpr(requested domain.ProductStatus) clause.Expr {
	return gorm.Expr("CASE WHEN quantity = 0 THEN ? WHEN ? = ? AND quantity > 0 THEN ? ELSE ? END",
		domain.ProductOutOfStock,
		requested, domain.ProductOutOfStock, domain.ProductActive,
		requested,
	)
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *productRepo) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *productRepo) findOne(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&p).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	out := []domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&n).Error
	return n > 0, err
}

func (r *productRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category_id = ?", f.Category)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := []domain.Product{}
	err := q.Scopes(paginate(f.Page, f.Limit)).Order(orderBy(f.Sort)).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func orderBy(s domain.ProductSort) string {
	switch s {
	case domain.SortPriceAsc:
		return "price ASC"
	case domain.SortPriceDesc:
		return "price DESC"
	case domain.SortNameAsc:
		return "name ASC"
	case domain.SortNameDesc:
		return "name DESC"
	default:
		return "created_at DESC"
	}
}

// MySQL evaluates SET assignments left to right, so status is derived
// before quantity is overwritten.
const adjustStockSQL = `UPDATE products SET
	status = CASE
		WHEN quantity + ? = 0 THEN ?
		WHEN status = ? AND quantity + ? > 0 THEN ?
		ELSE status END,
	quantity = quantity + ?,
	updated_at = ?
WHERE id = ? AND quantity + ? >= 0`

func (r *productRepo) AdjustStock(ctx context.Context, id string, delta int) (bool, error) {
	return r.adjust(ctx, adjustStockSQL, id, delta)
}

func (r *productRepo) ReserveStock(ctx context.Context, id string, qty int) (bool, error) {
	return r.adjust(ctx, adjustStockSQL+" AND status = ?", id, -qty, domain.ProductActive)
}

func (r *productRepo) adjust(ctx context.Context, query, id string, delta int, extra ...any) (bool, error) {
	args := append([]any{
		delta, domain.ProductOutOfStock,
		domain.ProductOutOfStock, delta, domain.ProductActive,
		delta,
		time.Now(),
		id, delta,
	}, extra...)
	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return mapError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *categoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return mapError(r.db.WithContext(ctx).Save(c).Error)
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{}).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	out := []domain.Category{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&n).Error
	return n > 0, err
}
