package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func TestAllows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role models.Role
		cap  Capability
		want bool
	}{
		{models.RoleAdmin, CategoriesWrite, true},
		{models.RoleAdmin, OrdersManage, true},
		{models.RoleCustomer, CategoriesWrite, false},
		{models.RoleCustomer, ProductsWrite, false},
		{models.RoleCustomer, UsersList, false},
		{models.RoleCustomer, FilesUpload, true},
		{models.Role("root"), FilesUpload, false},
		{models.Role(""), ProductsWrite, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Allows(tt.role, tt.cap))
		})
	}
}

func TestOwnership(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()

	self := tokens.Identity{UserID: owner, Role: string(models.RoleCustomer)}
	other := tokens.Identity{UserID: stranger, Role: string(models.RoleCustomer)}
	admin := tokens.Identity{UserID: uuid.New(), Role: string(models.RoleAdmin)}

	assert.True(t, CanActOnUser(self, owner))
	assert.False(t, CanActOnUser(other, owner))
	assert.True(t, CanActOnUser(admin, owner))

	assert.True(t, CanAccessOrder(self, owner))
	assert.False(t, CanAccessOrder(other, owner))
	assert.True(t, CanAccessOrder(admin, owner))

	assert.False(t, CanAccessOrder(tokens.Identity{}, uuid.Nil))
}
