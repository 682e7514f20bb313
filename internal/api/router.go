package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/hravenhq/hraven/internal/api/handlers"
	"github.com/hravenhq/hraven/internal/api/middleware"
	"github.com/hravenhq/hraven/internal/auth"
	"github.com/hravenhq/hraven/internal/blob"
	"github.com/hravenhq/hraven/internal/onboarding"
	"github.com/hravenhq/hraven/internal/provisioning"
	"github.com/hravenhq/hraven/internal/role"
	"github.com/hravenhq/hraven/internal/tenant"
	"github.com/hravenhq/hraven/pkg/crypto"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client // nil disables Redis-backed progress
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Encryptor      *crypto.Encryptor
	AsynqClient    *asynq.Client // nil disables outgoing mail
	Blobs          *blob.Store
	OTPExpiry      time.Duration
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	tenantService := tenant.NewService(cfg.DB, cfg.Logger)
	roleService := role.NewService(cfg.DB)
	userService := provisioning.NewService(cfg.DB, tenantService, roleService, cfg.Encryptor, cfg.AsynqClient, cfg.Logger, cfg.OTPExpiry)

	var progress onboarding.ProgressStore
	if cfg.Redis != nil {
		progress = onboarding.NewRedisStore(cfg.Redis)
	} else {
		progress = onboarding.NewMemoryStore()
	}
	wizardService := onboarding.NewService(progress, userService, tenantService, cfg.AsynqClient, cfg.Logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	registerHandler := handlers.NewRegisterHandler(userService)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	roleHandler := handlers.NewRoleHandler(roleService)
	userHandler := handlers.NewUserHandler(userService, cfg.Blobs)
	uploadHandler := handlers.NewUploadHandler(cfg.Blobs, tenantService)
	onboardingHandler := handlers.NewOnboardingHandler(wizardService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Public signup and login
	r.Post("/users/register", registerHandler.Register)
	r.Post("/users/verify-otp", registerHandler.VerifyOTP)
	r.Post("/auth/login", authHandler.Login)

	// Avatar upload happens before the user row exists, during the
	// admin's create-user form. Tenant scope comes from the route.
	r.Post("/upload-avatar/{tenantId}/avatar", uploadHandler.Avatar)

	// Protected routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTService))

		r.Get("/me", authHandler.Me)

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", roleHandler.List)
			r.Post("/", roleHandler.Create)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", tenantHandler.List)
			r.Post("/", tenantHandler.Create)
			r.Get("/current", tenantHandler.Current)
			r.Get("/{id}", tenantHandler.Get)
			r.Put("/{id}", tenantHandler.Update)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Put("/{id}/status", userHandler.UpdateStatus)
		})

		r.Post("/upload/{tenantId}/logo", uploadHandler.Logo)

		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/progress", onboardingHandler.GetProgress)
			r.Put("/progress", onboardingHandler.SaveProgress)
			r.Delete("/progress", onboardingHandler.ClearProgress)
			r.Post("/finish", onboardingHandler.Finish)
		})
	})

	// Stored blobs
	if cfg.Blobs != nil {
		fileServer := http.FileServer(http.Dir(cfg.Blobs.Root()))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}

	return &Router{r}
}
