package policy

import (
	"slices"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type Capability string

const (
	ProductsWrite   Capability = "products:write"
	CategoriesWrite Capability = "categories:write"
	UsersList       Capability = "users:list"
	UsersManage     Capability = "users:manage"
	OrdersManage    Capability = "orders:manage"
	FilesUpload     Capability = "files:upload"
	FilesDelete     Capability = "files:delete"
)

var grants = map[models.Role][]Capability{
	models.RoleCustomer: {FilesUpload},
	models.RoleAdmin: {
		ProductsWrite, CategoriesWrite,
		UsersList, UsersManage,
		OrdersManage,
		FilesUpload, FilesDelete,
	},
}

// Allows reports whether role holds capability c. Unknown roles hold nothing.
func Allows(role models.Role, c Capability) bool {
	return slices.Contains(grants[role], c)
}

// IsOwnerOr reports whether id owns the resource or holds the override capability.
func IsOwnerOr(id tokens.Identity, owner uuid.UUID, override Capability) bool {
	if id.UserID != uuid.Nil && id.UserID == owner {
		return true
	}
	return Allows(models.Role(id.Role), override)
}

func CanActOnUser(id tokens.Identity, target uuid.UUID) bool {
	return IsOwnerOr(id, target, UsersManage)
}

func CanAccessOrder(id tokens.Identity, owner uuid.UUID) bool {
	return IsOwnerOr(id, owner, OrdersManage)
}
