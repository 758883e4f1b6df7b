package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// CatalogItem is a priced extra that can be chosen for a pool configuration. Price is stored
// alongside cost and margin and is not recomputed from them.
type CatalogItem struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string              `gorm:"column:name;not null" json:"name"`
	SKU       string              `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Category  enums.ExtraCategory `gorm:"column:category;type:text;not null;index" json:"category"`
	Cost      decimal.Decimal     `gorm:"column:cost;type:numeric(12,2);not null" json:"cost"`
	Margin    decimal.Decimal     `gorm:"column:margin;type:numeric(12,2);not null" json:"margin"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Position  int                 `gorm:"column:position;not null;default:0" json:"position"`
	IsActive  bool                `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

// BeforeCreate assigns an id when the caller did not provide one.
func (c *CatalogItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
