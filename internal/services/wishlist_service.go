package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"greenmart/internal/domain"
	"greenmart/internal/repository"
)

type WishlistService struct {
	wishlists repository.WishlistRepository
	products  repository.ProductRepository
}

func NewWishlistService(wishlists repository.WishlistRepository, products repository.ProductRepository) *WishlistService {
	return &WishlistService{wishlists: wishlists, products: products}
}

func (s *WishlistService) Get(ctx context.Context, userID string) (*domain.WishlistView, error) {
	w, err := s.wishlists.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		now := time.Now()
		w = &domain.Wishlist{ID: uuid.NewString(), UserID: userID, Products: []domain.WishlistItem{}, CreatedAt: now, UpdatedAt: now}
		if err := s.wishlists.Save(ctx, w); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, w)
}

func (s *WishlistService) Add(ctx context.Context, userID, productID string) (*domain.WishlistView, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}

	w, err := s.wishlists.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if w == nil {
		w = &domain.Wishlist{ID: uuid.NewString(), UserID: userID, Products: []domain.WishlistItem{}, CreatedAt: now}
	}
	if w.Contains(productID) {
		return nil, domain.Validation("Product already in wishlist")
	}
	w.Products = append(w.Products, domain.WishlistItem{ProductID: productID, AddedAt: now})
	w.UpdatedAt = now

	if err := s.wishlists.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID string) (*domain.WishlistView, error) {
	w, err := s.wishlists.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFound("Wishlist not found")
	}
	w.Remove(productID)
	w.UpdatedAt = time.Now()

	if err := s.wishlists.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// view resolves product references; products deleted since are left out.
func (s *WishlistService) view(ctx context.Context, w *domain.Wishlist) (*domain.WishlistView, error) {
	ids := make([]string, 0, len(w.Products))
	for _, it := range w.Products {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	view := &domain.WishlistView{ID: w.ID, UserID: w.UserID, Products: []domain.WishlistLine{}, UpdatedAt: w.UpdatedAt}
	for _, it := range w.Products {
		if p, ok := byID[it.ProductID]; ok {
			view.Products = append(view.Products, domain.WishlistLine{Product: p, AddedAt: it.AddedAt})
		}
	}
	return view, nil
}
