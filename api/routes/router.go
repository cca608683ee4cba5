package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/charmcart-backend/api/controllers"
	"github.com/angelmondragon/charmcart-backend/api/middleware"
	"github.com/angelmondragon/charmcart-backend/internal/session"
	"github.com/angelmondragon/charmcart-backend/pkg/config"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

// Params wires the HTTP surface.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions *session.Manager
	Gatherer prometheus.Gatherer
	Ready    map[string]controllers.Pinger
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Ready))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(p.Sessions, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(logg))
			r.Delete("/", controllers.CartClear(logg))
			r.Get("/summary", controllers.CartSummary(logg))
			r.Post("/items", controllers.CartAddItem(logg))
			r.Patch("/items/{lineItemId}", controllers.CartUpdateItem(logg))
			r.Delete("/items/{lineItemId}", controllers.CartRemoveItem(logg))
			r.Post("/validate", controllers.CartValidate(logg))
			r.Post("/undo", controllers.CartUndo(logg))
			r.Post("/redo", controllers.CartRedo(logg))
		})

		r.Route("/design", func(r chi.Router) {
			r.Get("/", controllers.DesignCurrent(logg))
			r.Post("/", controllers.DesignPush(logg))
			r.Get("/history", controllers.DesignHistory(logg))
			r.Post("/undo", controllers.DesignUndo(logg))
			r.Post("/redo", controllers.DesignRedo(logg))
			r.Post("/milestones", controllers.DesignMilestone(logg))
			r.Post("/export", controllers.DesignExport(logg))
			r.Post("/bundles", controllers.DesignBundleCreate(logg))
			r.Post("/bundles/load", controllers.DesignBundleLoad(logg))
		})

		r.Route("/session", func(r chi.Router) {
			r.Post("/sign-in", controllers.SessionSignIn(logg))
			r.Post("/sign-out", controllers.SessionSignOut(logg))
			r.Post("/sync", controllers.SessionSync(logg))
		})
	})

	return r
}
