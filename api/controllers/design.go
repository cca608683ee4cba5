package controllers

import (
	"net/http"

	"github.com/angelmondragon/charmcart-backend/api/controllers/dto"
	"github.com/angelmondragon/charmcart-backend/api/responses"
	"github.com/angelmondragon/charmcart-backend/api/validators"
	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/angelmondragon/charmcart-backend/internal/session"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

func designResponse(s *session.Session, snap design.Snapshot, found, added bool) dto.DesignResponse {
	resp := dto.DesignResponse{
		Added:         added,
		CanUndo:       s.CanUndoDesign(),
		CanRedo:       s.CanRedoDesign(),
		HistoryLength: s.DesignHistoryLen(),
	}
	if found {
		resp.Snapshot = &snap
	}
	return resp
}

func DesignCurrent(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		snap, found := s.CurrentDesign()
		responses.WriteSuccess(w, designResponse(s, snap, found, false))
	}
}

func DesignHistory(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, s.DesignHistory())
	}
}

func DesignPush(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req dto.PushDesignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, added, err := s.PushDesign(req.ToDesign())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !added {
			snap, _ = s.CurrentDesign()
		}
		responses.WriteSuccess(w, designResponse(s, snap, true, added))
	}
}

func DesignUndo(logg *logger.Logger) http.HandlerFunc {
	return designStep(logg, (*session.Session).UndoDesign)
}

func DesignRedo(logg *logger.Logger) http.HandlerFunc {
	return designStep(logg, (*session.Session).RedoDesign)
}

func designStep(logg *logger.Logger, step func(*session.Session) (design.Snapshot, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		snap, moved := step(s)
		if !moved {
			snap, moved = s.CurrentDesign()
		}
		responses.WriteSuccess(w, designResponse(s, snap, moved, false))
	}
}

func DesignMilestone(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req dto.MilestoneRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := s.MarkMilestone(validators.SanitizeString(req.Label, 80)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, found := s.CurrentDesign()
		responses.WriteSuccess(w, designResponse(s, snap, found, false))
	}
}

func DesignExport(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req dto.ExportDesignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, state, err := s.ExportDesignToCart(r.Context(), req.SnapshotID, req.ToMetadata())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto.ExportResponse{LineItem: line, CartResponse: cartResponse(s, state)})
	}
}

func DesignBundleCreate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req dto.CreateBundleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bundle, err := s.CreateDesignBundle(validators.SanitizeString(req.Name, 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bundle)
	}
}

func DesignBundleLoad(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var bundle design.Bundle
		if err := validators.DecodeJSONBody(r, &bundle); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := s.LoadDesignBundle(bundle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, designResponse(s, snap, true, true))
	}
}
