package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/charmcart-backend/api/controllers/dto"
	"github.com/angelmondragon/charmcart-backend/api/responses"
	"github.com/angelmondragon/charmcart-backend/api/validators"
	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/session"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

func CartFetch(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, cartResponse(s, s.GetCartState()))
	}
}

func CartSummary(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, s.GetCartSummary())
	}
}

func CartAddItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req dto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req.Title = validators.SanitizeString(req.Title, 200)
		state, err := s.AddItem(r.Context(), req.ToInput(), req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cartResponse(s, state))
	}
}

func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req dto.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := s.UpdateItemQuantity(r.Context(), chi.URLParam(r, "lineItemId"), req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse(s, state))
	}
}

func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		state, err := s.RemoveItem(r.Context(), chi.URLParam(r, "lineItemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse(s, state))
	}
}

func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		state, err := s.ClearCart(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse(s, state))
	}
}

func CartValidate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		result, err := s.ValidateInventory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartUndo(logg *logger.Logger) http.HandlerFunc {
	return cartStep(logg, func(r *http.Request, s *session.Session) (cart.State, bool, error) {
		return s.Undo(r.Context())
	})
}

func CartRedo(logg *logger.Logger) http.HandlerFunc {
	return cartStep(logg, func(r *http.Request, s *session.Session) (cart.State, bool, error) {
		return s.Redo(r.Context())
	})
}

func cartStep(logg *logger.Logger, step func(r *http.Request, s *session.Session) (cart.State, bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		state, changed, err := step(r, s)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.HistoryStepResponse{CartResponse: cartResponse(s, state), Changed: changed})
	}
}
