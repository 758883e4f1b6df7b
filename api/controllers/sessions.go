package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aquaforma/poolquote-backend/api/responses"
	"github.com/aquaforma/poolquote-backend/api/validators"
	"github.com/aquaforma/poolquote-backend/internal/extras"
	"github.com/aquaforma/poolquote-backend/internal/sessions"
	"github.com/aquaforma/poolquote-backend/pkg/enums"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

// SessionManager is the editing session registry the API drives.
type SessionManager interface {
	Begin(ctx context.Context, configurationID uuid.UUID) (*sessions.Session, error)
	Get(id uuid.UUID) (*sessions.Session, error)
	End(ctx context.Context, id uuid.UUID) error
}

type slotRequest struct {
	Selected  *bool      `json:"selected"`
	ItemID    *uuid.UUID `json:"item_id"`
	ClearItem bool       `json:"clear_item"`
	Quantity  *int       `json:"quantity"`
}

type addMiscRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"gte=0,max=999"`
}

// Quantities below one are clamped by the store.
type updateMiscRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=999"`
}

type addCustomRequest struct {
	Name   string          `json:"name" validate:"required,max=200"`
	Cost   decimal.Decimal `json:"cost" validate:"gte=0"`
	Margin decimal.Decimal `json:"margin"`
}

type resolveRequest struct {
	Resolution string `json:"resolution" validate:"required,oneof=proceed discard"`
}

// mutationResponse carries the whole selection because one edit can flip derived slots.
type mutationResponse struct {
	Selection extras.Selection `json:"selection"`
	Totals    extras.Totals    `json:"totals"`
}

type customResponse struct {
	RowID uuid.UUID `json:"row_id"`
	mutationResponse
}

func SessionBegin(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configurationID, err := validators.ParseUUIDParam(r, "configurationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := mgr.Begin(r.Context(), configurationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session.View())
	}
}

func SessionDetail(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		responses.WriteSuccess(w, s.View())
	})
}

func SessionEnd(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := mgr.End(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// SessionUpdateSlot applies item, then selection, then quantity from one request, all or nothing.
func SessionUpdateSlot(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		category, err := validators.ParseCategoryParam(r, "category")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req slotRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := s.UpdateSlot(category, extras.SlotUpdate{
			ItemID:    req.ItemID,
			ClearItem: req.ClearItem,
			Selected:  req.Selected,
			Quantity:  req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, totals)
	})
}

func SessionAddMisc(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		var req addMiscRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := s.AddMiscItem(req.ItemID, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, totals)
	})
}

func SessionUpdateMisc(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateMiscRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := s.UpdateMiscItemQuantity(itemID, *req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, totals)
	})
}

func SessionRemoveMisc(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := s.RemoveMiscItem(itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, totals)
	})
}

func SessionAddCustom(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		var req addCustomRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rowID, totals, err := s.AddCustomItem(req.Name, req.Cost, req.Margin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customResponse{
			RowID:            rowID,
			mutationResponse: mutationResponse{Selection: s.Store().Snapshot(), Totals: totals},
		})
	})
}

func SessionRemoveCustom(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		rowID, err := validators.ParseUUIDParam(r, "rowId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totals, err := s.RemoveCustomItem(rowID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, totals)
	})
}

func SessionRefreshCatalog(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		totals, err := s.RefreshCatalog(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeMutation(w, s, totals)
	})
}

// SessionResolveConflict answers a pending consistency warning with proceed or discard.
func SessionResolveConflict(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		var req resolveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := s.Resolve(r.Context(), enums.ConflictResolution(req.Resolution)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, s.View())
	})
}

func SessionNotifications(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		responses.WriteSuccess(w, map[string]any{"notifications": s.Notifications()})
	})
}

func SessionFlush(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return withSession(mgr, logg, func(w http.ResponseWriter, r *http.Request, s *sessions.Session) {
		if err := s.Flush(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]bool{"scheduled": true})
	})
}

func withSession(mgr SessionManager, logg *logger.Logger, next func(http.ResponseWriter, *http.Request, *sessions.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := mgr.Get(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, id.String())
			ctx = logg.WithConfigurationID(ctx, session.ConfigurationID.String())
		}
		next(w, r.WithContext(ctx), session)
	}
}

func writeMutation(w http.ResponseWriter, s *sessions.Session, totals extras.Totals) {
	responses.WriteSuccess(w, mutationResponse{Selection: s.Store().Snapshot(), Totals: totals})
}
