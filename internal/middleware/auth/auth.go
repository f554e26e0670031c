package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxIdentity = "identity"
)

type AccessVerifier interface {
	VerifyAccess(token string) (tokens.Identity, error)
}

type Middleware struct {
	Tokens AccessVerifier
}

func New(v AccessVerifier) *Middleware {
	return &Middleware{Tokens: v}
}

// RequireAuth rejects requests without a valid bearer access token.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth.require_auth")

		raw, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		id, err := m.Tokens.VerifyAccess(raw)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "invalid access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		SetIdentity(c, id)
		return next(c)
	}
}

// RequireCapability must run after RequireAuth.
func RequireCapability(cap policy.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "auth.require_capability")

			id, ok := IdentityFrom(c)
			if !ok {
				l.Warn("access_denied", "status", 401, "reason", "no identity", "capability", cap)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !policy.Allows(models.Role(id.Role), cap) {
				l.Warn("access_denied", "status", 403, "reason", "role lacks capability", "role", id.Role, "capability", cap)
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			return next(c)
		}
	}
}

func BearerToken(header string) (string, bool) {
	tok, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func SetIdentity(c echo.Context, id tokens.Identity) {
	c.Set(ctxIdentity, id)
	c.Set(ctxUserID, id.UserID.String())
	c.Set(ctxRole, id.Role)

	l := logging.FromContext(c.Request().Context()).With("user_id", id.UserID.String())
	c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))
}

func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(tokens.Identity)
	return id, ok
}
