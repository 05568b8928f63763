package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"greenmart/internal/domain"
	"greenmart/internal/repository"
)

type CartSummary struct {
	Cart      *domain.CartView `json:"cart"`
	Subtotal  float64          `json:"subtotal"`
	ItemCount int              `json:"itemCount"`
}

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) Get(ctx context.Context, userID string) (*CartSummary, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summary(ctx, cart)
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*CartSummary, error) {
	if productID == "" || quantity < 1 {
		return nil, domain.Validation("Please provide valid product and quantity")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	if p.Status != domain.ProductActive {
		return nil, domain.Validation("Product is not available")
	}
	if quantity > p.Quantity {
		return nil, domain.Validation("Only %d items available in stock", p.Quantity)
	}

	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.IndexOf(productID); i >= 0 {
		merged := cart.Items[i].Quantity + quantity
		if merged > p.Quantity {
			return nil, domain.Validation("Only %d items available in stock", p.Quantity)
		}
		cart.Items[i].Quantity = merged
	} else {
		cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity, AddedAt: time.Now()})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.summary(ctx, cart)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*CartSummary, error) {
	if quantity < 1 {
		return nil, domain.Validation("Please provide valid quantity")
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	if quantity > p.Quantity {
		return nil, domain.Validation("Only %d items available in stock", p.Quantity)
	}

	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.IndexOf(productID)
	if i < 0 {
		return nil, domain.NotFound("Item not found in cart")
	}
	cart.Items[i].Quantity = quantity

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.summary(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartSummary, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Remove(productID)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.summary(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return err
	}
	cart.Items = []domain.CartItem{}
	return s.save(ctx, cart)
}

func (s *CartService) existing(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.NotFound("Cart not found")
	}
	return cart, nil
}

func (s *CartService) loadOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil || cart != nil {
		return cart, err
	}
	now := time.Now()
	cart = &domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()
	return s.carts.Save(ctx, cart)
}

func (s *CartService) summary(ctx context.Context, cart *domain.Cart) (*CartSummary, error) {
	products, err := s.products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	view := &domain.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]domain.CartLine, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, it := range cart.Items {
		view.Items = append(view.Items, domain.CartLine{
			Product:  byID[it.ProductID],
			Quantity: it.Quantity,
			AddedAt:  it.AddedAt,
		})
	}
	return &CartSummary{Cart: view, Subtotal: view.Subtotal(), ItemCount: len(cart.Items)}, nil
}
