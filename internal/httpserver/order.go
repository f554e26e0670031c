package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	actor, _ := auth.IdentityFrom(c)

	total, items, err := h.Svc.List(ctx, actor, offset, limit)
	if err != nil {
		return fail(l, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.Order]{
		Data: items,
		Meta: util.Meta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_order_failed", "id is not a uuid", err)
	}
	actor, _ := auth.IdentityFrom(c)

	o, err := h.Svc.Get(ctx, actor, id)
	if err != nil {
		return fail(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_failed", "invalid body", err)
	}
	actor, _ := auth.IdentityFrom(c)

	o, err := h.Svc.Create(ctx, actor, req)
	if err != nil {
		return fail(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", o.ID.String(), "total", o.TotalPrice)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_order_failed", "id is not a uuid", err)
	}
	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_failed", "invalid body", err)
	}
	actor, _ := auth.IdentityFrom(c)

	o, err := h.Svc.Update(ctx, actor, id, req)
	if err != nil {
		return fail(l, "update_order_failed", err)
	}

	l.Info("update_order_success", "order_id", id.String(), "order_status", o.Status)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "delete_order_failed", "id is not a uuid", err)
	}
	actor, _ := auth.IdentityFrom(c)

	if err := h.Svc.Delete(ctx, actor, id); err != nil {
		return fail(l, "delete_order_failed", err)
	}

	l.Info("delete_order_success", "order_id", id.String())
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout_failed", "invalid body", err)
	}
	actor, _ := auth.IdentityFrom(c)

	res, err := h.Svc.Checkout(ctx, actor, req)
	if err != nil {
		return fail(l, "checkout_failed", err)
	}

	l.Info("checkout_success", "payment_id", res.PaymentID, "amount", res.Amount)
	return c.JSON(http.StatusOK, res)
}
