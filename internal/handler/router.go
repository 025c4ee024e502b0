package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	honeypotHandler "github.com/teamyukt/honeynet/internal/handler/honeypot"
	"github.com/teamyukt/honeynet/internal/handler/watch"
	middlewarePkg "github.com/teamyukt/honeynet/internal/middleware"
	honeypotService "github.com/teamyukt/honeynet/internal/service/honeypot"
	"github.com/teamyukt/honeynet/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(svc *honeypotService.Service, apiKey string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"service": "agentic scam honeypot",
			"status":  "running",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	hpHandler := honeypotHandler.New(svc)
	watchHandler := watch.New(svc, log)

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.APIKey(apiKey))
		hpHandler.RegisterRoutes(api)
		watchHandler.RegisterRoutes(api)
	})

	return r
}
