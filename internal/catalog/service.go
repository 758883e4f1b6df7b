package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aquaforma/poolquote-backend/pkg/db"
	"github.com/aquaforma/poolquote-backend/pkg/db/models"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
)

type itemReader interface {
	List(ctx context.Context, category *enums.ExtraCategory) ([]models.CatalogItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
}

// Service exposes catalog reads to the rest of the application.
type Service interface {
	ListItems(ctx context.Context, category *enums.ExtraCategory) ([]models.CatalogItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	LoadIndex(ctx context.Context) (*Index, error)
}

type service struct {
	repo itemReader
}

// NewService builds a catalog service.
func NewService(repo itemReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListItems(ctx context.Context, category *enums.ExtraCategory) ([]models.CatalogItem, error) {
	if category != nil && !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown catalog category")
	}
	items, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog items")
	}
	return items, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
	}
	return item, nil
}

func (s *service) LoadIndex(ctx context.Context) (*Index, error) {
	items, err := s.ListItems(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewIndex(items), nil
}
