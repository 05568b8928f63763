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

type CategoryInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

type CategoryService struct {
	categories repository.CategoryRepository
	images     infra.ImageGatewayInterface
}

func NewCategoryService(categories repository.CategoryRepository, images infra.ImageGatewayInterface) *CategoryService {
	return &CategoryService{categories: categories, images: images}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx, true)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("Category not found")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput, image *ImageUpload) (*domain.Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Validation("Please provide category name")
	}
	if image == nil {
		return nil, domain.Validation("Please upload category image")
	}

	name := strings.TrimSpace(*in.Name)
	slug, err := uniqueSlug(ctx, name, "", s.categories.ExistsBySlug)
	if err != nil {
		return nil, err
	}

	uploaded, err := uploadImages(ctx, s.images, []ImageUpload{*image}, categoriesFolder)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		Image:     domain.CategoryImage{URL: uploaded[0].URL, PublicID: uploaded[0].PublicID},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	if err := s.categories.Create(ctx, c); err != nil {
		deleteImage(context.WithoutCancel(ctx), s.images, c.Image.PublicID)
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation("Category already exists")
		}
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput, image *ImageUpload) (*domain.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" && strings.TrimSpace(*in.Name) != c.Name {
		c.Name = strings.TrimSpace(*in.Name)
		if c.Slug, err = uniqueSlug(ctx, c.Name, c.ID, s.categories.ExistsBySlug); err != nil {
			return nil, err
		}
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	oldImage := ""
	if image != nil {
		uploaded, err := uploadImages(ctx, s.images, []ImageUpload{*image}, categoriesFolder)
		if err != nil {
			return nil, err
		}
		oldImage = c.Image.PublicID
		c.Image = domain.CategoryImage{URL: uploaded[0].URL, PublicID: uploaded[0].PublicID}
	}
	c.UpdatedAt = time.Now()

	if err := s.categories.Update(ctx, c); err != nil {
		if image != nil {
			deleteImage(context.WithoutCancel(ctx), s.images, c.Image.PublicID)
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation("Category already exists")
		}
		return nil, err
	}
	deleteImage(ctx, s.images, oldImage)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	deleteImage(ctx, s.images, c.Image.PublicID)
	return nil
}
