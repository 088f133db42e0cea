package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PierreBrethes/life-map-back/internal/cache"
	"github.com/PierreBrethes/life-map-back/internal/core"
	applog "github.com/PierreBrethes/life-map-back/internal/log"
	"github.com/PierreBrethes/life-map-back/internal/middleware/ratelimit"
	"github.com/PierreBrethes/life-map-back/internal/middleware/security"
	"github.com/PierreBrethes/life-map-back/internal/middleware/trace"
	"github.com/PierreBrethes/life-map-back/internal/services"
	"github.com/PierreBrethes/life-map-back/internal/storage"
)

// Server wires the JSON API over the storage layer and the recurring
// finance services.
type Server struct {
	http.Server

	storage  *storage.SQLiteRepository
	ledger   *services.LedgerService
	engine   *services.RecurringEngine
	migrator *services.SubscriptionMigrator

	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *applog.Logger

	// Ledger list queries are the hot read path; entries only change
	// through this server or the recurring engine behind it.
	entriesCache *cache.LRUCache[[]core.LedgerEntry]
	cacheManager *cache.Manager
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, repo *storage.SQLiteRepository, ledger *services.LedgerService, engine *services.RecurringEngine, migrator *services.SubscriptionMigrator, logger *applog.Logger) *Server {
	s := &Server{
		storage:      repo,
		ledger:       ledger,
		engine:       engine,
		migrator:     migrator,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
		logger:       logger.WithComponent(applog.ComponentHTTP),
		entriesCache: cache.NewLRUCache[[]core.LedgerEntry](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.entriesCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	r := chi.NewRouter()

	headers := security.NewHeadersMiddleware(security.APIHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)

	r.Use(tracer.Middleware)
	r.Use(headers.Middleware)
	r.Use(applog.Middleware(s.logger))
	r.Use(s.rejectSuspicious)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, nil))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", s.handleCreateCategory)
			r.Get("/", s.handleListCategories)
			r.Get("/{id}", s.handleGetCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", s.handleCreateItem)
			r.Get("/", s.handleListItems)
			r.Get("/{id}", s.handleGetItem)
			r.Put("/{id}", s.handleUpdateItem)
			r.Delete("/{id}", s.handleDeleteItem)

			r.Get("/{id}/valuation", s.handleGetValuation)
			r.Put("/{id}/valuation", s.handleUpsertValuation)
			r.Delete("/{id}/valuation", s.handleDeleteValuation)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", s.handleCreateContact)
			r.Get("/", s.handleListContacts)
			r.Get("/{id}", s.handleGetContact)
			r.Put("/{id}", s.handleUpdateContact)
			r.Delete("/{id}", s.handleDeleteContact)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", s.handleCreateEvent)
			r.Get("/", s.handleListEvents)
			r.Get("/{id}", s.handleGetEvent)
			r.Put("/{id}", s.handleUpdateEvent)
			r.Delete("/{id}", s.handleDeleteEvent)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", s.handleCreateAlert)
			r.Get("/", s.handleListAlerts)
			r.Get("/{id}", s.handleGetAlert)
			r.Put("/{id}", s.handleUpdateAlert)
			r.Delete("/{id}", s.handleDeleteAlert)
		})

		r.Route("/dependencies", func(r chi.Router) {
			r.Post("/", s.handleCreateDependency)
			r.Get("/", s.handleListDependencies)
			r.Get("/{id}", s.handleGetDependency)
			r.Put("/{id}", s.handleUpdateDependency)
			r.Delete("/{id}", s.handleDeleteDependency)
		})

		r.Route("/health", func(r chi.Router) {
			r.Route("/body-metrics", func(r chi.Router) {
				r.Post("/", s.handleCreateBodyMetric)
				r.Get("/", s.handleListBodyMetrics)
				r.Get("/{id}", s.handleGetBodyMetric)
				r.Put("/{id}", s.handleUpdateBodyMetric)
				r.Delete("/{id}", s.handleDeleteBodyMetric)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Post("/", s.handleCreateAppointment)
				r.Get("/", s.handleListAppointments)
				r.Get("/{id}", s.handleGetAppointment)
				r.Put("/{id}", s.handleUpdateAppointment)
				r.Delete("/{id}", s.handleDeleteAppointment)
			})
		})

		r.Route("/finance", func(r chi.Router) {
			r.Route("/ledger", func(r chi.Router) {
				r.Post("/", s.handleAppendEntry)
				r.Get("/", s.handleListEntries)
				r.Get("/{id}", s.handleGetEntry)
				r.Delete("/{id}", s.handleDeleteEntry)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", s.handleCreateSubscription)
				r.Get("/", s.handleListSubscriptions)
				r.Get("/{id}", s.handleGetSubscription)
				r.Put("/{id}", s.handleUpdateSubscription)
				r.Delete("/{id}", s.handleDeleteSubscription)
			})

			r.Route("/recurring", func(r chi.Router) {
				r.Post("/", s.handleCreateRule)
				r.Get("/", s.handleListRules)
				r.Get("/{id}", s.handleGetRule)
				r.Put("/{id}", s.handleUpdateRule)
				r.Delete("/{id}", s.handleDeleteRule)

				r.Post("/sync", s.handleRecurringSync)
				r.Post("/migrate", s.handleRecurringMigrate)
			})
		})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Shutdown stops the HTTP server and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "storage not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// rejectSuspicious drops requests matching known scan patterns.
func (s *Server) rejectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request rejected",
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r))
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}
