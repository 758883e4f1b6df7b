package controllers

import (
	"net/http"

	"github.com/aquaforma/poolquote-backend/api/responses"
	"github.com/aquaforma/poolquote-backend/api/validators"
	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

// CatalogList returns the active catalog, optionally filtered with ?category=.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := validators.ParseCategoryQuery(r, "category")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListItems(r.Context(), category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
