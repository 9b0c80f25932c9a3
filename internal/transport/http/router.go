package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	affiliateapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/affiliate"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/authflow"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/customer"
	emailapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/email"
	materialapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/material"
	orderapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/order"
	presenceapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/presence"
	scrapeapp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/scrape"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/application/session"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/handler"
	appmiddleware "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// Shared cap across all public endpoints.
	publicRL := appmiddleware.NewWindowLimiter(deps.WindowStore, cfg.RateLimitPerMinute, time.Minute, deps.Logger)
	// 5 requests/second, burst of 10, applied on top of the public cap to
	// login and code-flow endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	emailSvc := emailapp.NewService(deps.Mailer, deps.AffiliateRepo, deps.B2CCustomerRepo, deps.UserRepo, deps.EmailLogRepo, cfg, deps.Logger)
	sessionSvc := session.NewService(deps.CredentialRepo, deps.SessionRepo, deps.JWTProvider, deps.GoogleVerifier, cfg, deps.Logger)
	affiliateSvc := affiliateapp.NewService(deps.AffiliateRepo, deps.CredentialRepo, emailSvc, cfg, deps.Logger)
	customerSvc := customer.NewService(deps.UserRepo, deps.CredentialRepo, deps.SessionRepo, deps.OrderRepo, deps.MaterialRepo, deps.AdminDocRepo, deps.S3Store, emailSvc, cfg, deps.Logger)
	authflowSvc := authflow.NewService(deps.ResetRepo, deps.VerificationRepo, deps.CredentialRepo, deps.UserRepo, deps.B2CCustomerRepo, deps.SessionRepo, emailSvc, deps.SMSSender, cfg, deps.Logger)
	orderSvc := orderapp.NewService(deps.OrderRepo, emailSvc, affiliateSvc, cfg, deps.Logger)
	materialSvc := materialapp.NewService(deps.MaterialRepo, deps.S3Store, deps.Logger)
	presenceSvc := presenceapp.NewService(deps.PresenceRepo, deps.Logger)
	scrapeSvc := scrapeapp.NewService(deps.Logger)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	customerH := handler.NewCustomerHandler(customerSvc)
	affiliateH := handler.NewAffiliateHandler(affiliateSvc)
	orderH := handler.NewOrderHandler(orderSvc, deps.UserRepo)
	authflowH := handler.NewAuthFlowHandler(authflowSvc)
	emailH := handler.NewEmailHandler(emailSvc, deps.EmailLogRepo)
	materialH := handler.NewMaterialHandler(materialSvc)
	presenceH := handler.NewPresenceHandler(presenceSvc)
	scrapeH := handler.NewScrapeHandler(scrapeSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth, shared request cap) ─────────────────────
		r.Group(func(r chi.Router) {
			r.Use(publicRL.Limit)

			r.Get("/health-check", healthH.Ping)
			r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
			r.With(sensitiveRL.Limit).Post("/sessions/google", sessionH.LoginWithGoogle)
			r.Post("/sessions/refresh", sessionH.Refresh)
			r.With(sensitiveRL.Limit).Post("/password-reset/{action}", authflowH.PasswordReset)
			r.With(sensitiveRL.Limit).Post("/email-verification/{action}", authflowH.EmailVerification)
			r.Post("/customers/apply", customerH.Apply)
			r.Post("/affiliates/apply", affiliateH.Apply)
			r.Post("/affiliates/click/{code}", affiliateH.Click)
			r.Post("/orders", orderH.Create)
			r.Post("/scrape", scrapeH.Fetch)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/sessions/logout", sessionH.Logout)
			r.Get("/orders", orderH.ListMine)
			r.Get("/orders/{id}", orderH.Get)
			r.Get("/materials", materialH.List)
			r.Get("/materials/{id}/download", materialH.Download)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/users", customerH.CreateAdmin)
				r.Post("/customers/{id}/toggle-active", customerH.ToggleActive)
				r.Delete("/customers/{id}", customerH.Delete)

				r.Get("/affiliates/{id}", affiliateH.Get)
				r.Post("/affiliates/{id}/approve", affiliateH.Approve)
				r.Post("/affiliates/{id}/deny", affiliateH.Deny)
				r.Post("/affiliates/{id}/suspend", affiliateH.Suspend)

				r.Put("/orders/{id}/status", orderH.UpdateStatus)
				r.Post("/orders/{id}/send-confirmation", orderH.SendConfirmation)

				r.Post("/emails", emailH.Send)
				r.Get("/emails/log", emailH.Log)

				r.Post("/materials", materialH.Upload)
				r.Delete("/materials/{id}", materialH.Delete)

				r.Post("/presence/heartbeat", presenceH.Heartbeat)
				r.Post("/presence/offline", presenceH.Offline)
				r.Get("/presence", presenceH.List)
				r.Get("/presence/{id}", presenceH.Get)

			})
		})
	})

	return r
}
