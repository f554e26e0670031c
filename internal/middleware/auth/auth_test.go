package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func newTestTokens() *tokens.Service {
	return tokens.NewService([]byte("access"), []byte("refresh"), time.Minute, time.Hour)
}

func serve(t *testing.T, m *Middleware, cap policy.Capability, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	called := false
	h := func(c echo.Context) error {
		called = true
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		assert.Equal(t, id.UserID.String(), c.Get("user_id"))
		return c.NoContent(http.StatusNoContent)
	}
	e.DELETE("/categories/:id", h, m.RequireAuth, RequireCapability(cap))

	req := httptest.NewRequest(http.MethodDelete, "/categories/"+uuid.NewString(), nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, called
}

func TestRequireAuthAndCapability(t *testing.T) {
	t.Parallel()
	ts := newTestTokens()
	m := New(ts)

	admin, err := ts.Issue(uuid.New(), string(models.RoleAdmin))
	require.NoError(t, err)
	customer, err := ts.Issue(uuid.New(), string(models.RoleCustomer))
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"no header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, false},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, false},
		{"garbage", "Bearer xyz", http.StatusUnauthorized, false},
		{"refresh as access", "Bearer " + admin.RefreshToken, http.StatusUnauthorized, false},
		{"customer", "Bearer " + customer.AccessToken, http.StatusForbidden, false},
		{"admin", "Bearer " + admin.AccessToken, http.StatusNoContent, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, called := serve(t, m, policy.CategoriesWrite, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestRequireCapabilityWithoutIdentity(t *testing.T) {
	t.Parallel()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequireCapability(policy.UsersList)(func(echo.Context) error { return nil })(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("bearer abc")
	assert.False(t, ok)
}
