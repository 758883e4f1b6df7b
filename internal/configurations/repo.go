package configurations

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// Repository persists pool configurations and their selection rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a configuration repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a configuration.
func (r *Repository) Create(ctx context.Context, record *models.PoolConfiguration) (*models.PoolConfiguration, error) {
	if record.Status == "" {
		record.Status = enums.ConfigurationStatusDraft
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByID loads a configuration without its rows.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PoolConfiguration, error) {
	var record models.PoolConfiguration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetStatus reads only the status column.
func (r *Repository) GetStatus(ctx context.Context, id uuid.UUID) (enums.ConfigurationStatus, error) {
	var record models.PoolConfiguration
	err := r.db.WithContext(ctx).
		Select("status").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return "", err
	}
	return record.Status, nil
}

// UpdateStatus sets the configuration status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ConfigurationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.PoolConfiguration{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateTotals stores the last written totals snapshot.
func (r *Repository) UpdateTotals(ctx context.Context, id uuid.UUID, cost, margin, price decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.PoolConfiguration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_cost":   cost,
			"total_margin": margin,
			"total_price":  price,
		}).Error
}

// ListRows returns persisted rows in write order, optionally for one group.
func (r *Repository) ListRows(ctx context.Context, id uuid.UUID, group *enums.CategoryGroup) ([]models.ConfigurationRow, error) {
	query := r.db.WithContext(ctx).Where("configuration_id = ?", id)
	if group != nil {
		query = query.Where("category_group = ?", *group)
	}
	var rows []models.ConfigurationRow
	if err := query.Order("category_group ASC").Order("position ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceRows deletes the rows of one group and inserts the provided set. Callers wrap it in a
// transaction so readers never observe the group empty.
func (r *Repository) ReplaceRows(ctx context.Context, id uuid.UUID, group enums.CategoryGroup, rows []models.ConfigurationRow) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("configuration_id = ? AND category_group = ?", id, group).Delete(&models.ConfigurationRow{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ID = uuid.Nil
		rows[i].ConfigurationID = id
		rows[i].Group = group
	}
	return tx.Create(&rows).Error
}
