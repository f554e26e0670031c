package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const maxOrderQuantity = 1000

type OrderService struct {
	Orders   OrderStore
	Products ProductStore
	Payments PaymentGateway
	Events   EventPublisher
	Effects  SideEffects

	Currency string
}

// List never returns orders owned by anyone but the caller.
func (s *OrderService) List(ctx context.Context, actor tokens.Identity, offset, limit int) (int64, []models.Order, error) {
	total, items, err := s.Orders.ListOrdersByUser(ctx, actor.UserID, offset, limit)
	if err != nil {
		return 0, nil, fromStore(err, "orders")
	}
	if total == 0 {
		return 0, nil, fmt.Errorf("%w: no orders", ErrNotFound)
	}
	return total, items, nil
}

func (s *OrderService) Get(ctx context.Context, actor tokens.Identity, id uuid.UUID) (*models.Order, error) {
	o, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fromStore(err, "order")
	}
	if !policy.CanAccessOrder(actor, o.UserID) {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return o, nil
}

func (s *OrderService) Create(ctx context.Context, actor tokens.Identity, req transport.CreateOrderRequest) (*models.Order, error) {
	addr := strings.TrimSpace(req.ShippingAddress)
	if addr == "" {
		return nil, fmt.Errorf("%w: shipping_address is required", ErrValidation)
	}
	items, total, err := s.price(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		UserID:          actor.UserID,
		Items:           items,
		TotalPrice:      total,
		ShippingAddress: addr,
		Status:          models.StatusPrepare,
	}
	if err := s.Orders.CreateOrder(ctx, o); err != nil {
		return nil, fromStore(err, "order")
	}

	s.publish(ctx, *o, "order_created")
	return o, nil
}

func (s *OrderService) Update(ctx context.Context, actor tokens.Identity, id uuid.UUID, req transport.UpdateOrderRequest) (*models.Order, error) {
	o, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != o.Status {
		if !policy.Allows(models.Role(actor.Role), policy.OrdersManage) {
			return nil, fmt.Errorf("%w: only admins can change order status", ErrForbidden)
		}
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
		o.Status = *req.Status
	}
	if req.ShippingAddress != nil {
		addr := strings.TrimSpace(*req.ShippingAddress)
		if addr == "" {
			return nil, fmt.Errorf("%w: shipping_address must not be empty", ErrValidation)
		}
		o.ShippingAddress = addr
	}

	replace := req.Items != nil
	if replace {
		if o.Status != models.StatusPrepare {
			return nil, fmt.Errorf("%w: items can only change while the order is being prepared", ErrValidation)
		}
		items, total, err := s.price(ctx, *req.Items)
		if err != nil {
			return nil, err
		}
		o.Items = items
		o.TotalPrice = total
	}

	if err := s.Orders.SaveOrder(ctx, o, replace); err != nil {
		return nil, fromStore(err, "order")
	}
	s.publish(ctx, *o, "order_updated")

	updated, err := s.Orders.GetOrder(ctx, o.ID)
	if err != nil {
		return nil, fromStore(err, "order")
	}
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, actor tokens.Identity, id uuid.UUID) error {
	o, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Orders.DeleteOrder(ctx, o.ID); err != nil {
		return fromStore(err, "order")
	}
	s.publish(ctx, *o, "order_deleted")
	return nil
}

// Checkout creates a payment intent. With an order id the amount comes from the
// stored order; otherwise the client-supplied total is charged.
func (s *OrderService) Checkout(ctx context.Context, actor tokens.Identity, req transport.CheckoutRequest) (*transport.CheckoutResponse, error) {
	if s.Payments == nil {
		return nil, errors.New("payment gateway is not configured")
	}

	amount := req.TotalAmount
	meta := map[string]string{"user_id": actor.UserID.String()}
	if req.OrderID != nil {
		o, err := s.Get(ctx, actor, *req.OrderID)
		if err != nil {
			return nil, err
		}
		amount = o.TotalPrice
		meta["order_id"] = o.ID.String()
	}

	minor, err := payment.ToMinorUnits(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.Currency
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}

	intent, err := s.Payments.CreatePaymentIntent(ctx, minor, currency, meta)
	if err != nil {
		return nil, err
	}
	return &transport.CheckoutResponse{
		PaymentID:    intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	}, nil
}

// price resolves current product prices and computes line and order totals.
func (s *OrderService) price(ctx context.Context, reqItems []transport.OrderItemRequest) ([]models.OrderItem, float64, error) {
	if len(reqItems) == 0 {
		return nil, 0, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	qty := make(map[uuid.UUID]int, len(reqItems))
	order := make([]uuid.UUID, 0, len(reqItems))
	for _, it := range reqItems {
		if it.ProductID == uuid.Nil {
			return nil, 0, fmt.Errorf("%w: product_id is required", ErrValidation)
		}
		if it.Quantity < 1 || it.Quantity > maxOrderQuantity {
			return nil, 0, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, maxOrderQuantity)
		}
		if _, seen := qty[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
		if qty[it.ProductID] > maxOrderQuantity {
			return nil, 0, fmt.Errorf("%w: quantity for product %s exceeds %d", ErrValidation, it.ProductID, maxOrderQuantity)
		}
	}

	products, err := s.Products.GetProductsByIDs(ctx, order)
	if err != nil {
		return nil, 0, fromStore(err, "products")
	}

	items := make([]models.OrderItem, 0, len(order))
	var totalCents int64
	for _, id := range order {
		p, ok := products[id]
		if !ok {
			return nil, 0, fmt.Errorf("%w: product %s does not exist", ErrValidation, id)
		}
		unitCents := int64(math.Round(p.Price * 100))
		lineCents := unitCents * int64(qty[id])
		totalCents += lineCents
		items = append(items, models.OrderItem{
			ProductID: id,
			Title:     p.Title,
			Quantity:  qty[id],
			UnitPrice: p.Price,
			LineTotal: float64(lineCents) / 100,
		})
	}
	return items, float64(totalCents) / 100, nil
}

func (s *OrderService) publish(ctx context.Context, o models.Order, eventType string) {
	pub := s.Events
	if pub == nil {
		pub = NoopPublisher
	}
	s.Effects.Run(ctx, "event."+eventType, func(ctx context.Context) error {
		return pub.PublishEvent(ctx, events.TopicOrders, o.ID.String(), eventType, map[string]any{
			"order_id":    o.ID.String(),
			"user_id":     o.UserID.String(),
			"total_price": o.TotalPrice,
			"status":      o.Status,
		})
	})
}
