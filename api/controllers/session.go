package controllers

import (
	"net/http"

	"github.com/angelmondragon/charmcart-backend/api/controllers/dto"
	"github.com/angelmondragon/charmcart-backend/api/responses"
	"github.com/angelmondragon/charmcart-backend/api/validators"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

func SessionSignIn(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		var req dto.SignInRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, report, err := s.SignIn(r.Context(), req.IdentityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.SignInResponse{CartResponse: cartResponse(s, state), Merge: report})
	}
}

func SessionSignOut(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		state, err := s.SignOut(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse(s, state))
	}
}

func SessionSync(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		state, err := s.Sync(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartResponse(s, state))
	}
}
