package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// Repository reads catalog items. Catalog editing happens elsewhere; Upsert exists for seeding.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns active catalog items in catalog order, optionally restricted to one category.
func (r *Repository) List(ctx context.Context, category *enums.ExtraCategory) ([]models.CatalogItem, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != nil {
		query = query.Where("category = ?", *category)
	}
	var items []models.CatalogItem
	if err := query.Order("position ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID loads a single catalog item; gorm.ErrRecordNotFound when missing.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert inserts or updates items keyed by SKU.
func (r *Repository) Upsert(ctx context.Context, items []models.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "category", "cost", "margin", "price", "position", "is_active", "updated_at"}),
		}).
		Create(&items).Error
}
