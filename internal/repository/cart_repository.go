package repository

import (
	"context"

	"greenmart/internal/domain"
)

type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// Save inserts or replaces the cart of cart.UserID.
	Save(ctx context.Context, cart *domain.Cart) error
}

type WishlistRepository interface {
	FindByUser(ctx context.Context, userID string) (*domain.Wishlist, error)
	Save(ctx context.Context, wishlist *domain.Wishlist) error
}
