package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aquaforma/poolquote-backend/api/controllers"
	"github.com/aquaforma/poolquote-backend/api/middleware"
	"github.com/aquaforma/poolquote-backend/internal/catalog"
	"github.com/aquaforma/poolquote-backend/internal/configurations"
	"github.com/aquaforma/poolquote-backend/pkg/config"
	"github.com/aquaforma/poolquote-backend/pkg/logger"
)

// Dependencies groups what the router hands to controllers. RedisPinger may be nil.
type Dependencies struct {
	DBPinger       controllers.Pinger
	RedisPinger    controllers.Pinger
	Gatherer       prometheus.Gatherer
	Catalog        catalog.Service
	Configurations configurations.Service
	Sessions       controllers.SessionManager
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/items", controllers.CatalogList(deps.Catalog, logg))

		r.Route("/configurations", func(r chi.Router) {
			r.Post("/", controllers.ConfigurationCreate(deps.Configurations, logg))
			r.Route("/{configurationId}", func(r chi.Router) {
				r.Get("/", controllers.ConfigurationDetail(deps.Configurations, logg))
				r.Patch("/status", controllers.ConfigurationUpdateStatus(deps.Configurations, logg))
				r.Post("/sessions", controllers.SessionBegin(deps.Sessions, logg))
			})
		})

		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Get("/", controllers.SessionDetail(deps.Sessions, logg))
			r.Delete("/", controllers.SessionEnd(deps.Sessions, logg))
			r.Put("/slots/{category}", controllers.SessionUpdateSlot(deps.Sessions, logg))

			r.Post("/misc", controllers.SessionAddMisc(deps.Sessions, logg))
			r.Patch("/misc/{itemId}", controllers.SessionUpdateMisc(deps.Sessions, logg))
			r.Delete("/misc/{itemId}", controllers.SessionRemoveMisc(deps.Sessions, logg))

			r.Post("/custom", controllers.SessionAddCustom(deps.Sessions, logg))
			r.Delete("/custom/{rowId}", controllers.SessionRemoveCustom(deps.Sessions, logg))

			r.Post("/catalog/refresh", controllers.SessionRefreshCatalog(deps.Sessions, logg))
			r.Post("/conflict", controllers.SessionResolveConflict(deps.Sessions, logg))
			r.Get("/notifications", controllers.SessionNotifications(deps.Sessions, logg))
			r.Post("/flush", controllers.SessionFlush(deps.Sessions, logg))
		})
	})

	return r
}
