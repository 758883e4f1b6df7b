package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/aquaforma/poolquote-backend/pkg/errors"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
)

// ParseCategoryQuery reads an optional category filter; nil means no filter.
func ParseCategoryQuery(r *http.Request, key string) (*enums.ExtraCategory, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	category, err := enums.ParseExtraCategory(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category").WithDetails(map[string]any{"field": key})
	}
	return &category, nil
}
