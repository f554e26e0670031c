package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/blob"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListProducts(ctx context.Context, c catalog.Criteria) (int64, []models.Product, error)
	PriceBounds(ctx context.Context) (repo.PriceRange, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error)
	SaveOrder(ctx context.Context, o *models.Order, replaceItems bool) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key, eventType string, data any) error
}

type Mailer interface {
	SendWelcome(ctx context.Context, u models.User, tempPassword string) error
	SendPasswordReset(ctx context.Context, u models.User, tempPassword string) error
}

type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, body map[string]any) (int64, []models.Product, error)
}

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (payment.Intent, error)
}

type BlobStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (blob.File, error)
	Delete(ctx context.Context, publicID string) error
}

// SideEffects runs best-effort work after a successful write. Failures are
// logged and never returned to the caller.
type SideEffects struct {
	Timeout time.Duration
}

func (s SideEffects) Run(ctx context.Context, name string, fn func(ctx context.Context) error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logging.FromContext(ctx).Warn("side_effect_failed", "effect", name, "error", err)
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishEvent(context.Context, string, string, string, any) error { return nil }

// NoopPublisher discards events. Used when no broker is configured.
var NoopPublisher EventPublisher = noopPublisher{}
