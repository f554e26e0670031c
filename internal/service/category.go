package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CategoryService struct {
	Categories CategoryStore
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.Categories.ListCategories(ctx)
	if err != nil {
		return nil, fromStore(err, "categories")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrNotFound)
	}
	return items, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.Categories.GetCategory(ctx, id)
	if err != nil {
		return nil, fromStore(err, "category")
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	c := &models.Category{Title: title, Image: strings.TrimSpace(req.Image)}
	if err := s.Categories.CreateCategory(ctx, c); err != nil {
		return nil, fromStore(err, "category title")
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req transport.PatchCategoryRequest) (*models.Category, error) {
	c, err := s.Categories.GetCategory(ctx, id)
	if err != nil {
		return nil, fromStore(err, "category")
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		c.Title = title
	}
	setTrimmed(&c.Image, req.Image)

	if err := s.Categories.SaveCategory(ctx, c); err != nil {
		return nil, fromStore(err, "category title")
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return fromStore(s.Categories.DeleteCategory(ctx, id), "category")
}
