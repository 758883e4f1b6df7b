package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// PoolConfiguration is one customer's pool quote. The totals columns hold the last snapshot
// written by reconciliation; pricing is always recomputed from rows and the catalog.
type PoolConfiguration struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerName string                    `gorm:"column:customer_name;not null" json:"customer_name"`
	PoolName     string                    `gorm:"column:pool_name;not null" json:"pool_name"`
	Status       enums.ConfigurationStatus `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	TotalCost    decimal.Decimal           `gorm:"column:total_cost;type:numeric(12,2);not null;default:0" json:"total_cost"`
	TotalMargin  decimal.Decimal           `gorm:"column:total_margin;type:numeric(12,2);not null;default:0" json:"total_margin"`
	TotalPrice   decimal.Decimal           `gorm:"column:total_price;type:numeric(12,2);not null;default:0" json:"total_price"`
	Rows         []ConfigurationRow        `gorm:"foreignKey:ConfigurationID;constraint:OnDelete:CASCADE" json:"rows,omitempty"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PoolConfiguration) TableName() string { return "pool_configurations" }

// BeforeCreate assigns an id and a draft status when missing.
func (p *PoolConfiguration) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = enums.ConfigurationStatusDraft
	}
	return nil
}
