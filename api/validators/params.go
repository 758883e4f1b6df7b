package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// ParseUUIDParam reads a chi path parameter as a uuid.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing path parameter").WithDetails(map[string]any{"field": key})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseCategoryParam reads a chi path parameter as an extras category.
func ParseCategoryParam(r *http.Request, key string) (enums.ExtraCategory, error) {
	category, err := enums.ParseExtraCategory(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category").WithDetails(map[string]any{"field": key})
	}
	return category, nil
}
