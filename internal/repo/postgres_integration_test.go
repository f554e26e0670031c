package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
)

func newPostgresRepo(t *testing.T) *GormRepo {
	t.Helper()
	if os.Getenv("STOREFRONT_INTEGRATION") != "1" {
		t.Skip("set STOREFRONT_INTEGRATION=1 to run postgres integration tests")
	}
	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.Migrate(ctx, gdb))
	return New(gdb)
}

func TestPostgresConstraints(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateUser(ctx, &models.User{Email: "pg@shop.io", PasswordHash: "x", Role: models.RoleCustomer, Active: true}))
	err := r.CreateUser(ctx, &models.User{Email: "pg@shop.io", PasswordHash: "y", Role: models.RoleCustomer, Active: true})
	require.ErrorIs(t, err, ErrDuplicate)

	c := models.Category{Title: "Coats"}
	require.NoError(t, r.CreateCategory(ctx, &c))
	for _, p := range []models.Product{
		{Title: "Wool Coat", Price: 120, Description: "warm", CategoryID: c.ID, Sizes: models.SizeList{models.SizeMedium}},
		{Title: "rain coat", Price: 80, Description: "dry", CategoryID: c.ID, Sizes: models.SizeList{models.SizeLarge}},
	} {
		require.NoError(t, r.CreateProduct(ctx, &p))
	}

	total, items, err := r.ListProducts(ctx, catalog.Build(catalog.Filter{Title: "COAT", MinPrice: 100, MaxPrice: 50}))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	total, items, err = r.ListProducts(ctx, catalog.Build(catalog.Filter{Title: "coat", Size: models.SizeLarge}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "rain coat", items[0].Title)

	require.ErrorIs(t, r.DeleteCategory(ctx, c.ID), ErrInUse)
}
