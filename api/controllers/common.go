package controllers

import (
	"net/http"

	"github.com/angelmondragon/charmcart-backend/api/controllers/dto"
	"github.com/angelmondragon/charmcart-backend/api/middleware"
	"github.com/angelmondragon/charmcart-backend/api/responses"
	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/session"
	pkgerrors "github.com/angelmondragon/charmcart-backend/pkg/errors"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

func requireSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Session, bool) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing from request context"))
		return nil, false
	}
	return s, true
}

func cartResponse(s *session.Session, state cart.State) dto.CartResponse {
	return dto.CartResponse{
		Cart:    state,
		Summary: cart.Summarize(state, s.Engine().Config().Pricing),
		CanUndo: s.CanUndo(),
		CanRedo: s.CanRedo(),
	}
}
