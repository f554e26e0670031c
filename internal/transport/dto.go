package transport

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Address   string `json:"address"`
	Avatar    string `json:"avatar"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type CheckEmailRequest struct {
	Email string `json:"email"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Username  *string      `json:"username"`
	Address   *string      `json:"address"`
	Avatar    *string      `json:"avatar"`
	Role      *models.Role `json:"role"`
	Active    *bool        `json:"active"`
}

type AuthResponse struct {
	Tokens tokens.Pair  `json:"tokens"`
	User   *models.User `json:"user"`
}

type CategoryRequest struct {
	Title string `json:"title"`
	Image string `json:"image"`
}

type PatchCategoryRequest struct {
	Title *string `json:"title"`
	Image *string `json:"image"`
}

type CreateProductRequest struct {
	Title       string          `json:"title"`
	Price       float64         `json:"price"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Sizes       models.SizeList `json:"sizes"`
	CategoryID  uuid.UUID       `json:"category_id"`
}

type PatchProductRequest struct {
	Title       *string          `json:"title"`
	Price       *float64         `json:"price"`
	Description *string          `json:"description"`
	Images      *[]string        `json:"images"`
	Sizes       *models.SizeList `json:"sizes"`
	CategoryID  *uuid.UUID       `json:"category_id"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ProductList struct {
	Total       int64            `json:"total"`
	Products    []models.Product `json:"products"`
	MinMaxPrice PriceRange       `json:"minMaxPrice"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress string             `json:"shipping_address"`
}

type UpdateOrderRequest struct {
	Items           *[]OrderItemRequest `json:"items"`
	ShippingAddress *string             `json:"shipping_address"`
	Status          *models.OrderStatus `json:"status"`
}

type CheckoutRequest struct {
	OrderID     *uuid.UUID `json:"order_id"`
	TotalAmount float64    `json:"total_amount"`
	Currency    string     `json:"currency"`
}

type CheckoutResponse struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type FileResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
