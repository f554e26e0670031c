package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

type OrderKey struct {
	Column string
	Desc   bool
}

// Criteria is a store-independent description of a product query.
type Criteria struct {
	TitlePattern string
	Title        string

	MinPrice *float64
	MaxPrice *float64

	CategoryID uuid.UUID
	Size       models.Size

	Order []OrderKey

	Limit  int
	Offset int
}

var defaultOrder = []OrderKey{{Column: "title"}, {Column: "created_at"}, {Column: "price"}}

// Build turns a filter into criteria. It never fails; min above max simply matches nothing.
func Build(f Filter) Criteria {
	c := Criteria{
		CategoryID: f.CategoryID,
		Size:       f.Size,
		Limit:      f.Limit,
		Offset:     f.Offset,
	}

	if t := strings.TrimSpace(f.Title); t != "" {
		c.Title = t
		c.TitlePattern = "%" + escapeLike(t) + "%"
	}
	if f.MinPrice > 0 {
		v := f.MinPrice
		c.MinPrice = &v
	}
	if f.MaxPrice > 0 {
		v := f.MaxPrice
		c.MaxPrice = &v
	}

	explicit := map[string]SortDir{
		"title":      f.SortTitle,
		"created_at": f.SortCreated,
		"price":      f.SortPrice,
	}
	for _, k := range defaultOrder {
		if d := explicit[k.Column]; d != "" {
			c.Order = append(c.Order, OrderKey{Column: k.Column, Desc: d == Desc})
		}
	}
	for _, k := range defaultOrder {
		if explicit[k.Column] == "" {
			c.Order = append(c.Order, k)
		}
	}
	c.Order = append(c.Order, OrderKey{Column: "id"})
	return c
}

// Apply adds the filter clauses to db.
func (c Criteria) Apply(db *gorm.DB) *gorm.DB {
	if c.TitlePattern != "" {
		db = db.Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, c.TitlePattern)
	}
	if c.MinPrice != nil {
		db = db.Where("price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		db = db.Where("price <= ?", *c.MaxPrice)
	}
	if c.CategoryID != uuid.Nil {
		db = db.Where("category_id = ?", c.CategoryID)
	}
	if c.Size != "" {
		db = db.Where("sizes LIKE ?", `%"`+string(c.Size)+`"%`)
	}
	return db
}

// ApplyPage adds ordering and pagination. Limit 0 returns every match.
func (c Criteria) ApplyPage(db *gorm.DB) *gorm.DB {
	for _, k := range c.Order {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: k.Column}, Desc: k.Desc})
	}
	if c.Offset > 0 {
		db = db.Offset(c.Offset)
	}
	if c.Limit > 0 {
		db = db.Limit(c.Limit)
	}
	return db
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
