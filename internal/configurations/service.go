package configurations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
)

var ErrConfigurationNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput carries the fields needed to open a new configuration.
type CreateInput struct {
	CustomerName string
	PoolName     string
}

// Service is the configuration persistence boundary used by editing sessions and the API.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PoolConfiguration, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PoolConfiguration, error)
	GetStatus(ctx context.Context, id uuid.UUID) (enums.ConfigurationStatus, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ConfigurationStatus) error
	ListRows(ctx context.Context, id uuid.UUID, group *enums.CategoryGroup) ([]models.ConfigurationRow, error)
	ReplaceRows(ctx context.Context, id uuid.UUID, group enums.CategoryGroup, rows []models.ConfigurationRow) error
	UpdateTotals(ctx context.Context, id uuid.UUID, cost, margin, price decimal.Decimal) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds the configuration service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("configuration repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PoolConfiguration, error) {
	customer := strings.TrimSpace(input.CustomerName)
	if customer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	record, err := s.repo.Create(ctx, &models.PoolConfiguration{
		CustomerName: customer,
		PoolName:     strings.TrimSpace(input.PoolName),
		Status:       enums.ConfigurationStatusDraft,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create configuration")
	}
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PoolConfiguration, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "load configuration")
	}
	return record, nil
}

func (s *service) GetStatus(ctx context.Context, id uuid.UUID) (enums.ConfigurationStatus, error) {
	status, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		return "", mapLookupError(err, "read configuration status")
	}
	return status, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ConfigurationStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid configuration status")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return mapLookupError(err, "update configuration status")
	}
	return nil
}

func (s *service) ListRows(ctx context.Context, id uuid.UUID, group *enums.CategoryGroup) ([]models.ConfigurationRow, error) {
	if group != nil && !group.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category group")
	}
	rows, err := s.repo.ListRows(ctx, id, group)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list configuration rows")
	}
	return rows, nil
}

func (s *service) ReplaceRows(ctx context.Context, id uuid.UUID, group enums.CategoryGroup, rows []models.ConfigurationRow) error {
	if !group.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid category group")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceRows(ctx, id, group, rows)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("replace %s rows", group))
	}
	return nil
}

func (s *service) UpdateTotals(ctx context.Context, id uuid.UUID, cost, margin, price decimal.Decimal) error {
	if err := s.repo.UpdateTotals(ctx, id, cost, margin, price); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update configuration totals")
	}
	return nil
}

func mapLookupError(err error, action string) error {
	if db.IsNotFound(err) {
		return ErrConfigurationNotFound
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
