package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_failed", "invalid body", err)
	}

	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err)
	}

	l.Info("register_success", "user_id", u.ID.String())
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHTTP) CheckEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.check_email")

	var req transport.CheckEmailRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "check_email_failed", "invalid body", err)
	}
	if err := h.Svc.CheckEmail(ctx, req.Email); err != nil {
		return fail(l, "check_email_failed", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "email is available"})
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_failed", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	l.Info("login_success", "user_id", res.User.ID.String())
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) GoogleLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.google_login")

	var req transport.GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "google_login_failed", "invalid body", err)
	}

	res, err := h.Svc.GoogleLogin(ctx, req.IDToken)
	if err != nil {
		return fail(l, "google_login_failed", err)
	}

	l.Info("google_login_success", "user_id", res.User.ID.String())
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "refresh_failed", "invalid body", err)
	}
	if req.RefreshToken == "" {
		return badRequest(l, "refresh_failed", "refresh_token is required", nil)
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(l, "refresh_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) ForgetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.forget_password")

	var req transport.ForgetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "forget_password_failed", "invalid body", err)
	}
	if err := h.Svc.ForgetPassword(ctx, req.Email); err != nil {
		return fail(l, "forget_password_failed", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "a temporary password has been sent"})
}

func (h *UserHTTP) Session(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.session")

	actor, _ := auth.IdentityFrom(c)
	u, err := h.Svc.Get(ctx, actor, actor.UserID)
	if err != nil {
		return fail(l, "session_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		return fail(l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.User]{
		Data: items,
		Meta: util.Meta(page, offset, limit, total),
	})
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_user_failed", "id is not a uuid", err)
	}
	actor, _ := auth.IdentityFrom(c)

	u, err := h.Svc.Get(ctx, actor, id)
	if err != nil {
		return fail(l, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) UpdateSelf(c echo.Context) error {
	actor, _ := auth.IdentityFrom(c)
	return h.update(c, actor, actor.UserID)
}

func (h *UserHTTP) Update(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_user_failed", "id is not a uuid", err)
	}
	actor, _ := auth.IdentityFrom(c)
	return h.update(c, actor, id)
}

func (h *UserHTTP) update(c echo.Context, actor tokens.Identity, id uuid.UUID) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update", "target_id", id.String())

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_user_failed", "invalid body", err)
	}

	u, err := h.Svc.Update(ctx, actor, id, req)
	if err != nil {
		return fail(l, "update_user_failed", err)
	}

	l.Info("update_user_success")
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_password")

	var req transport.UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_password_failed", "invalid body", err)
	}
	actor, _ := auth.IdentityFrom(c)

	u, err := h.Svc.UpdatePassword(ctx, actor, req)
	if err != nil {
		return fail(l, "update_password_failed", err)
	}

	l.Info("update_password_success")
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "delete_user_failed", "id is not a uuid", err)
	}
	actor, _ := auth.IdentityFrom(c)

	if err := h.Svc.Delete(ctx, actor, id); err != nil {
		return fail(l, "delete_user_failed", err)
	}

	l.Info("delete_user_success", "target_id", id.String())
	return c.NoContent(http.StatusNoContent)
}
