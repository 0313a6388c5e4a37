package searchhttp

import (
	"log/slog"
	"net/http"
	"time"

	"property_search/internal/domain"
	"property_search/internal/lib/auth"
	"property_search/internal/services/catalog"
	"property_search/internal/services/search"
	"property_search/internal/services/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// SessionRegistry хранилище поисковых сессий.
type SessionRegistry interface {
	Create(viewer search.Viewer) *session.Session
	Get(id string) (*session.Session, error)
	Delete(id string)
}

// CatalogInfo справочные данные каталога для построения фильтров.
type CatalogInfo interface {
	Facets() catalog.Facets
	Limits() domain.RangeLimits
	LoadedAt() time.Time
}

// serverAPI обработчики HTTP API слоя отрисовки.
type serverAPI struct {
	log      *slog.Logger
	sessions SessionRegistry
	catalog  CatalogInfo
	validate *validator.Validate
}

// NewRouter собирает роутер: CORS, определение зрителя по JWT, сессии и каталог.
func NewRouter(
	log *slog.Logger,
	sessions SessionRegistry,
	catalog CatalogInfo,
	parser *auth.Parser,
	allowedOrigins []string,
) http.Handler {
	s := &serverAPI{
		log:      log,
		sessions: sessions,
		catalog:  catalog,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(parser.Middleware(log))

		r.Get("/catalog/facets", s.facets)

		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)

			r.Post("/toggle", s.toggleParam)
			r.Post("/amenities/{amenityID}", s.toggleAmenity)
			r.Patch("/params", s.setParams)
			r.Post("/commit", s.commit)
			r.Post("/apply", s.apply)
			r.Post("/reset", s.reset)
			r.Put("/text", s.setText)
			r.Post("/ai", s.searchAI)
			r.Put("/mode", s.switchMode)
			r.Delete("/chips/{key}", s.clearChip)
		})
	})

	return r
}

func (s *serverAPI) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *serverAPI) facets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, facetsResponse{
		Facets:   s.catalog.Facets(),
		Limits:   s.catalog.Limits(),
		LoadedAt: s.catalog.LoadedAt(),
	})
}
