package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// ConfigurationRow is one persisted selection line written by reconciliation. Amounts are
// line totals (already multiplied where the pricing rules say so).
type ConfigurationRow struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ConfigurationID uuid.UUID           `gorm:"column:configuration_id;type:uuid;not null;index:idx_configuration_rows_group,priority:1" json:"configuration_id"`
	Group           enums.CategoryGroup `gorm:"column:category_group;type:text;not null;index:idx_configuration_rows_group,priority:2" json:"group"`
	Category        enums.ExtraCategory `gorm:"column:category;type:text;not null" json:"category"`
	CatalogItemID   *uuid.UUID          `gorm:"column:catalog_item_id;type:uuid" json:"catalog_item_id,omitempty"`
	Name            string              `gorm:"column:name;not null" json:"name"`
	SKU             string              `gorm:"column:sku;not null;default:''" json:"sku"`
	Quantity        int                 `gorm:"column:quantity;not null" json:"quantity"`
	Cost            decimal.Decimal     `gorm:"column:cost;type:numeric(12,2);not null" json:"cost"`
	Margin          decimal.Decimal     `gorm:"column:margin;type:numeric(12,2);not null" json:"margin"`
	Price           decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Custom          bool                `gorm:"column:is_custom;not null;default:false" json:"custom"`
	Position        int                 `gorm:"column:position;not null" json:"position"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ConfigurationRow) TableName() string { return "configuration_rows" }

// BeforeCreate assigns a fresh id to every inserted row.
func (r *ConfigurationRow) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
