package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"greenmart/internal/domain"
	"greenmart/internal/infra"
	"greenmart/internal/repository"
)

const (
	defaultProductLimit  = 12
	defaultFeaturedLimit = 8
	maxProductLimit      = 100
)

// ProductInput carries the writable product fields. Nil means "leave as is"
// on update.
type ProductInput struct {
	Name           *string
	Description    *string
	Price          *float64
	CompareAtPrice *float64
	SKU            *string
	Quantity       *int
	Category       *string
	Unit           *string
	Tags           []string
	Status         *string
	Featured       *bool
}

type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	images     infra.ImageGatewayInterface
}

func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, images infra.ImageGatewayInterface) *ProductService {
	return &ProductService{products: products, categories: categories, images: images}
}

// List returns active products only.
func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) (*Page[domain.Product], error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit, defaultProductLimit, maxProductLimit)
	f.Status = domain.ProductActive
	f.Search = strings.TrimSpace(f.Search)

	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page[domain.Product]{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *ProductService) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	_, limit = normalizePage(1, limit, defaultFeaturedLimit, maxProductLimit)
	items, _, err := s.products.List(ctx, domain.ProductFilter{
		Status:   domain.ProductActive,
		Featured: true,
		Page:     1,
		Limit:    limit,
	})
	return items, err
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	return p, nil
}

func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.products.FindBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("Product not found")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput, files []ImageUpload) (*domain.Product, error) {
	if len(files) == 0 {
		return nil, domain.Validation("Please upload at least one product image")
	}
	if len(files) > MaxProductImages {
		return nil, domain.Validation("You can upload at most %d images", MaxProductImages)
	}

	now := time.Now()
	p := &domain.Product{
		ID:        uuid.NewString(),
		Tags:      []string{},
		Status:    domain.ProductActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if missing := requiredProductFields(in); len(missing) > 0 {
		return nil, domain.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	p.Quantity = *in.Quantity
	if p.Quantity < 0 {
		return nil, domain.Validation("Quantity cannot be negative")
	}
	p.SyncStatus()

	slug, err := uniqueSlug(ctx, p.Name, "", s.products.ExistsBySlug)
	if err != nil {
		return nil, err
	}
	p.Slug = slug

	uploaded, err := uploadImages(ctx, s.images, files, productsFolder)
	if err != nil {
		return nil, err
	}
	p.Images = productImages(uploaded, true)

	if err := s.products.Create(ctx, p); err != nil {
		s.dropImages(ctx, p.Images)
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation("A product with this SKU already exists")
		}
		return nil, err
	}
	return p, nil
}

// Update applies the given fields. New files replace all existing images.
// A quantity is applied as a stock adjustment so concurrent reservations
// are not overwritten.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput, files []ImageUpload) (*domain.Product, error) {
	if len(files) > MaxProductImages {
		return nil, domain.Validation("You can upload at most %d images", MaxProductImages)
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldName := p.Name
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if p.Name != oldName {
		if p.Slug, err = uniqueSlug(ctx, p.Name, p.ID, s.products.ExistsBySlug); err != nil {
			return nil, err
		}
	}

	var replaced []domain.Image
	if len(files) > 0 {
		uploaded, err := uploadImages(ctx, s.images, files, productsFolder)
		if err != nil {
			return nil, err
		}
		replaced = p.Images
		p.Images = productImages(uploaded, true)
	}
	p.SyncStatus()
	p.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, p); err != nil {
		if len(files) > 0 {
			s.dropImages(ctx, p.Images)
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation("A product with this SKU already exists")
		}
		return nil, err
	}
	s.dropImages(ctx, replaced)

	if in.Quantity != nil {
		return s.UpdateStock(ctx, id, in.Quantity)
	}
	return p, nil
}

// AddImages appends images to a product, keeping the existing primary one.
func (s *ProductService) AddImages(ctx context.Context, id string, files []ImageUpload) (*domain.Product, error) {
	if len(files) == 0 {
		return nil, domain.Validation("Please upload at least one product image")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(p.Images)+len(files) > MaxProductImages {
		return nil, domain.Validation("A product can have at most %d images", MaxProductImages)
	}

	uploaded, err := uploadImages(ctx, s.images, files, productsFolder)
	if err != nil {
		return nil, err
	}
	added := productImages(uploaded, len(p.Images) == 0)
	p.Images = append(p.Images, added...)
	p.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, p); err != nil {
		s.dropImages(ctx, added)
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.dropImages(ctx, p.Images)
	return nil
}

// UpdateStock sets the quantity through an atomic adjustment from the
// quantity last read.
func (s *ProductService) UpdateStock(ctx context.Context, id string, quantity *int) (*domain.Product, error) {
	if quantity == nil || *quantity < 0 {
		return nil, domain.Validation("Please provide valid quantity")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.products.AdjustStock(ctx, id, *quantity-p.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Conflict("Stock changed while updating, please retry")
	}
	return s.Get(ctx, id)
}

func (s *ProductService) apply(ctx context.Context, p *domain.Product, in ProductInput) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return domain.Validation("Price cannot be negative")
		}
		p.Price = *in.Price
	}
	if in.CompareAtPrice != nil {
		if *in.CompareAtPrice < 0 {
			return domain.Validation("Compare price cannot be negative")
		}
		p.CompareAtPrice = in.CompareAtPrice
	}
	if in.SKU != nil && strings.TrimSpace(*in.SKU) != "" {
		p.SKU = strings.ToUpper(strings.TrimSpace(*in.SKU))
	}
	if in.Category != nil && *in.Category != "" && *in.Category != p.CategoryID {
		c, err := s.categories.FindByID(ctx, *in.Category)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.Validation("Category not found")
		}
		p.CategoryID = c.ID
	}
	if in.Unit != nil && *in.Unit != "" {
		u := domain.Unit(*in.Unit)
		if !u.Valid() {
			return domain.Validation("Invalid unit %s", *in.Unit)
		}
		p.Unit = u
	}
	if in.Tags != nil {
		p.Tags = cleanTags(in.Tags)
	}
	if in.Status != nil && *in.Status != "" {
		st := domain.ProductStatus(*in.Status)
		if !st.Valid() {
			return domain.Validation("Invalid status %s", *in.Status)
		}
		p.Status = st
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	return nil
}

func (s *ProductService) dropImages(ctx context.Context, images []domain.Image) {
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		deleteImage(ctx, s.images, img.PublicID)
	}
}

func requiredProductFields(in ProductInput) []string {
	var missing []string
	blank := func(v *string) bool { return v == nil || strings.TrimSpace(*v) == "" }
	if blank(in.Name) {
		missing = append(missing, "name")
	}
	if blank(in.Description) {
		missing = append(missing, "description")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if blank(in.SKU) {
		missing = append(missing, "sku")
	}
	if in.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if blank(in.Category) {
		missing = append(missing, "category")
	}
	if blank(in.Unit) {
		missing = append(missing, "unit")
	}
	return missing
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
