package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/ratelimit"
	"github.com/Skotchmaster/storefront/internal/policy"
)

type Deps struct {
	Users      *UserHTTP
	Products   *ProductHTTP
	Categories *CategoryHTTP
	Orders     *OrderHTTP
	Files      *FileHTTP

	Auth      *auth.Middleware
	Redis     *redis.Client
	RateLimit ratelimit.Config

	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Error("readiness_failed", "status", 503, "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")
	authed := d.Auth.RequireAuth
	can := auth.RequireCapability
	limited := ratelimit.FixedWindow(d.Redis, d.RateLimit)

	users := api.Group("/users")
	users.POST("", d.Users.Register)
	users.POST("/check-email", d.Users.CheckEmail)
	users.POST("/login", d.Users.Login, limited)
	users.POST("/google-login", d.Users.GoogleLogin, limited)
	users.POST("/refresh", d.Users.Refresh)
	users.POST("/forget-password", d.Users.ForgetPassword, limited)
	users.GET("", d.Users.List, authed, can(policy.UsersList))
	users.GET("/session", d.Users.Session, authed)
	users.GET("/:id", d.Users.Get, authed)
	users.PUT("", d.Users.UpdateSelf, authed)
	users.PUT("/update-password", d.Users.UpdatePassword, authed)
	users.PUT("/:id", d.Users.Update, authed)
	users.DELETE("/:id", d.Users.Delete, authed)

	products := api.Group("/products")
	products.GET("", d.Products.List)
	products.GET("/search", d.Products.Search)
	products.GET("/:id", d.Products.Get)
	products.POST("", d.Products.Create, authed, can(policy.ProductsWrite))
	products.PUT("/:id", d.Products.Update, authed, can(policy.ProductsWrite))
	products.DELETE("/:id", d.Products.Delete, authed, can(policy.ProductsWrite))

	categories := api.Group("/categories")
	categories.GET("", d.Categories.List)
	categories.GET("/:id", d.Categories.Get)
	categories.POST("", d.Categories.Create, authed, can(policy.CategoriesWrite))
	categories.PUT("/:id", d.Categories.Update, authed, can(policy.CategoriesWrite))
	categories.DELETE("/:id", d.Categories.Delete, authed, can(policy.CategoriesWrite))

	orders := api.Group("/orders", authed)
	orders.GET("", d.Orders.List)
	orders.POST("", d.Orders.Create)
	orders.POST("/checkout", d.Orders.Checkout)
	orders.GET("/:id", d.Orders.Get)
	orders.PUT("/:id", d.Orders.Update)
	orders.DELETE("/:id", d.Orders.Delete)

	files := api.Group("/files", authed)
	files.POST("/upload", d.Files.Upload, can(policy.FilesUpload))
	files.DELETE("/:id", d.Files.Delete, can(policy.FilesDelete))
}
