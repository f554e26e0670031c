package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type ProductService struct {
	Products   ProductStore
	Categories CategoryStore
	Index      ProductIndex
	Events     EventPublisher
	Effects    SideEffects
}

// List runs the catalog query. An empty result is reported as ErrNotFound.
func (s *ProductService) List(ctx context.Context, f catalog.Filter) (*transport.ProductList, error) {
	c := catalog.Build(f)
	total, items, err := s.Products.ListProducts(ctx, c)
	if err != nil {
		return nil, fromStore(err, "products")
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no products match the filter", ErrNotFound)
	}
	bounds, err := s.Products.PriceBounds(ctx)
	if err != nil {
		return nil, fromStore(err, "price bounds")
	}
	return &transport.ProductList{
		Total:       total,
		Products:    items,
		MinMaxPrice: transport.PriceRange{Min: bounds.Min, Max: bounds.Max},
	}, nil
}

// Search queries the search index with free text plus the same filters as List.
// Without an index it falls back to a title match in the store.
func (s *ProductService) Search(ctx context.Context, text string, f catalog.Filter) (*transport.ProductList, error) {
	text = strings.TrimSpace(text)
	if s.Index == nil {
		if text != "" {
			f.Title = text
		}
		return s.List(ctx, f)
	}

	body, err := catalog.Build(f).SearchBody(text)
	if err != nil {
		return nil, err
	}
	total, items, err := s.Index.Search(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no products match the search", ErrNotFound)
	}
	bounds, err := s.Products.PriceBounds(ctx)
	if err != nil {
		return nil, fromStore(err, "price bounds")
	}
	return &transport.ProductList{
		Total:       total,
		Products:    items,
		MinMaxPrice: transport.PriceRange{Min: bounds.Min, Max: bounds.Max},
	}, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		return nil, fromStore(err, "product")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		Title:       strings.TrimSpace(req.Title),
		Price:       req.Price,
		Description: strings.TrimSpace(req.Description),
		Images:      cleanImages(req.Images),
		Sizes:       req.Sizes,
		CategoryID:  req.CategoryID,
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Products.CreateProduct(ctx, p); err != nil {
		return nil, fromStore(err, "product")
	}

	s.afterWrite(ctx, *p, "product_created")
	return s.Get(ctx, p.ID)
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		return nil, fromStore(err, "product")
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.Images != nil {
		p.Images = cleanImages(*req.Images)
	}
	if req.Sizes != nil {
		p.Sizes = *req.Sizes
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
		p.Category = nil
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Products.SaveProduct(ctx, p); err != nil {
		return nil, fromStore(err, "product")
	}

	s.afterWrite(ctx, *p, "product_updated")
	return s.Get(ctx, p.ID)
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		return fromStore(err, "product")
	}
	if s.Index != nil {
		s.Effects.Run(ctx, "index.product_delete", func(ctx context.Context) error {
			return s.Index.DeleteProduct(ctx, id)
		})
	}
	s.Effects.Run(ctx, "event.product_deleted", func(ctx context.Context) error {
		return s.events().PublishEvent(ctx, events.TopicProducts, id.String(), "product_deleted", map[string]string{"product_id": id.String()})
	})
	return nil
}

func (s *ProductService) validate(ctx context.Context, p *models.Product) error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	sizes, err := p.Sizes.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	p.Sizes = sizes

	if p.CategoryID == uuid.Nil {
		return fmt.Errorf("%w: category_id is required", ErrValidation)
	}
	if _, err := s.Categories.GetCategory(ctx, p.CategoryID); err != nil {
		if errors.Is(fromStore(err, "category"), ErrNotFound) {
			return fmt.Errorf("%w: category does not exist", ErrValidation)
		}
		return fromStore(err, "category")
	}
	return nil
}

func (s *ProductService) afterWrite(ctx context.Context, p models.Product, eventType string) {
	if s.Index != nil {
		s.Effects.Run(ctx, "index.product", func(ctx context.Context) error {
			return s.Index.IndexProduct(ctx, p)
		})
	}
	s.Effects.Run(ctx, "event."+eventType, func(ctx context.Context) error {
		return s.events().PublishEvent(ctx, events.TopicProducts, p.ID.String(), eventType, map[string]any{
			"product_id":  p.ID.String(),
			"title":       p.Title,
			"price":       p.Price,
			"category_id": p.CategoryID.String(),
		})
	})
}

func (s *ProductService) events() EventPublisher {
	if s.Events == nil {
		return NoopPublisher
	}
	return s.Events
}

func cleanImages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, img := range in {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
