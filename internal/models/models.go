package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	Active       bool      `gorm:"not null;default:true"     json:"active"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	Address      string    `json:"address"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"uniqueIndex;not null" json:"title"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	Title       string    `gorm:"index;not null"               json:"title"`
	Price       float64   `gorm:"index;not null"               json:"price"`
	Description string    `gorm:"not null"                     json:"description"`
	Images      []string  `gorm:"type:text;serializer:json"    json:"images"`
	Sizes       SizeList  `gorm:"type:text;serializer:json"    json:"sizes"`
	CategoryID  uuid.UUID `gorm:"type:uuid;index;not null"     json:"category_id"`
	Category    *Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	CreatedAt   time.Time `gorm:"index"                        json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	StatusPrepare    OrderStatus = "prepare"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPrepare, StatusDelivering, StatusDelivered:
		return true
	}
	return false
}

type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"                           json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;index;not null"                       json:"user_id"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice      float64     `gorm:"not null"                                       json:"total_price"`
	ShippingAddress string      `gorm:"not null"                                       json:"shipping_address"`
	Status          OrderStatus `gorm:"type:varchar(16);not null;default:prepare"      json:"status"`
	CreatedAt       time.Time   `gorm:"index"                                          json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	Title     string    `json:"title"`
	Quantity  int       `gorm:"not null"                 json:"quantity"`
	UnitPrice float64   `gorm:"not null"                 json:"unit_price"`
	LineTotal float64   `gorm:"not null"                 json:"line_total"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{&User{}, &Category{}, &Product{}, &Order{}, &OrderItem{}}
}
