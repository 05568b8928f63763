package repository

import (
	"context"

	"greenmart/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	// Update writes every field except quantity, which only AdjustStock
	// and ReserveStock change once a product exists. The stored status is
	// re-derived from the stored quantity.
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)

	// AdjustStock adds delta to the quantity atomically and re-derives the
	// stock status. A negative delta is applied only while the quantity stays
	// non-negative; false means the product is missing or short.
	AdjustStock(ctx context.Context, id string, delta int) (bool, error)

	// ReserveStock takes qty units from an active product in one atomic
	// step. It reports false when the product is missing, not active or
	// short.
	ReserveStock(ctx context.Context, id string, qty int) (bool, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
}
