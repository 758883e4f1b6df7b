package controllers

import (
	"net/http"
	"strings"

	"github.com/aquaforma/poolquote-backend/api/responses"
	"github.com/aquaforma/poolquote-backend/api/validators"
	"github.com/aquaforma/poolquote-backend/internal/configurations"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

type createConfigurationRequest struct {
	CustomerName string `json:"customer_name" validate:"required,max=200"`
	PoolName     string `json:"pool_name" validate:"max=200"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft quoted approved locked"`
}

func ConfigurationCreate(svc configurations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createConfigurationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Create(r.Context(), configurations.CreateInput{
			CustomerName: strings.TrimSpace(req.CustomerName),
			PoolName:     strings.TrimSpace(req.PoolName),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// ConfigurationDetail returns the configuration with its persisted rows.
func ConfigurationDetail(svc configurations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "configurationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListRows(r.Context(), id, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record.Rows = rows
		responses.WriteSuccess(w, record)
	}
}

// ConfigurationUpdateStatus is how other actors move a quote along; open editing sessions notice
// the change before their next write.
func ConfigurationUpdateStatus(svc configurations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "configurationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := enums.ConfigurationStatus(req.Status)
		if err := svc.UpdateStatus(r.Context(), id, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "status": status})
	}
}
