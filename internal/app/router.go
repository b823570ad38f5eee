package app

import (
	"database/sql"
	"net/http"
	"time"

	"mocktest/internal/app/observability"
	"mocktest/internal/auth"
	"mocktest/internal/exam"
	"mocktest/internal/question"
	"mocktest/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(cfg Config, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	metrics := observability.NewCollector(db)
	r.Use(metrics.Middleware)

	authLimiter := NewIPRateLimiter(cfg.AuthRateLimitPerMin, time.Minute)

	tokens := auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	authSvc := auth.NewService(auth.NewSQLStore(db), tokens, auth.ServiceConfig{
		BcryptCost:             cfg.BcryptCost,
		LoginMaxFailures:       cfg.LoginMaxFailures,
		LoginLockDuration:      time.Duration(cfg.LoginLockMinutes) * time.Minute,
		AllowAdminRegistration: cfg.AllowAdminRegistration,
	})
	authHandler := auth.NewHandler(authSvc)

	questionSvc := question.NewService(question.NewSQLStore(db), time.Duration(cfg.QuestionCacheTTLSeconds)*time.Second)
	questionHandler := question.NewHandler(questionSvc)

	results := exam.NewSQLResultStore(db)
	examSvc := exam.NewService(questionSvc, authSvc, results, exam.ServiceConfig{
		SingleAttempt: cfg.SingleAttempt,
	})
	examHandler := exam.NewHandler(examSvc)

	reportHandler := report.NewHandler(report.NewService(results, authSvc, questionSvc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(RateLimitMiddleware(authLimiter))
			public.Post("/auth/register", authHandler.Register)
			public.Post("/auth/login", authHandler.Login)
		})
		api.Get("/student/questions", questionHandler.ListPublic)

		api.Group(func(secure chi.Router) {
			secure.Use(authHandler.RequireAuth)
			secure.Use(observability.CaptureUser)
			secure.Get("/auth/me", authHandler.Me)

			secure.Group(func(student chi.Router) {
				student.Use(authHandler.RequireRoles(auth.RoleStudent))
				student.Post("/student/submit", examHandler.Submit)
				student.Get("/student/review", examHandler.Review)
				student.Get("/student/results", examHandler.MyResults)
			})

			secure.Route("/admin", func(admin chi.Router) {
				admin.Use(authHandler.RequireRoles(auth.RoleAdmin))
				admin.Get("/questions", questionHandler.List)
				admin.Post("/questions", questionHandler.Create)
				admin.Post("/questions/import", questionHandler.Import)
				admin.Get("/questions/import/template", questionHandler.ImportTemplate)
				admin.Get("/questions/{id}", questionHandler.Get)
				admin.Put("/questions/{id}", questionHandler.Update)
				admin.Delete("/questions/{id}", questionHandler.Delete)

				admin.Get("/results", reportHandler.Results)
				admin.Get("/results/export", reportHandler.ExportResults)
				admin.Get("/stats", reportHandler.Stats)
				admin.Get("/student/{rollNumber}/review", examHandler.ReviewByRollNumber)
				admin.Get("/metrics", metrics.MetricsHandler)
			})
		})
	})

	return r
}
