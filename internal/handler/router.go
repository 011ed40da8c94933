package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/aidar/activity-signup/internal/metrics"
	"github.com/aidar/activity-signup/internal/middleware"
)

// NewRouter настраивает chi роутер со всеми эндпоинтами сервиса
func NewRouter(activityHandler *ActivityHandler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Instrument(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Служебные эндпоинты
	r.Get("/health", Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Эндпоинты мероприятий
	r.Route("/activities", func(r chi.Router) {
		r.Get("/", activityHandler.ListActivities)
		r.Get("/{activity}", activityHandler.GetActivity)
		r.Post("/{activity}/signup", activityHandler.SignUp)
		r.Delete("/{activity}/signup", activityHandler.Unregister)
	})

	return r
}
