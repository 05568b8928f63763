package mysql

import (
	"context"

	"greenmart/internal/domain"
	"greenmart/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&c).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) Save(ctx context.Context, c *domain.Cart) error {
	return mapError(r.db.WithContext(ctx).Save(c).Error)
}

type wishlistRepo struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) repository.WishlistRepository {
	return &wishlistRepo{db: db}
}

func (r *wishlistRepo) FindByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var w domain.Wishlist
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&w).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *wishlistRepo) Save(ctx context.Context, w *domain.Wishlist) error {
	return mapError(r.db.WithContext(ctx).Save(w).Error)
}
