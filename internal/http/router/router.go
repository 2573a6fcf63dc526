package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/freelance-escrow/internal/config"
	"github.com/ignatzorin/freelance-escrow/internal/http/handlers"
	"github.com/ignatzorin/freelance-escrow/internal/http/middleware"
	"github.com/ignatzorin/freelance-escrow/internal/service"
)

// Handlers - все HTTP хэндлеры приложения.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Catalog      *handlers.CatalogHandler
	Wallet       *handlers.WalletHandler
	Job          *handlers.JobHandler
	Application  *handlers.ApplicationHandler
	Review       *handlers.ReviewHandler
	Report       *handlers.ReportHandler
	Notification *handlers.NotificationHandler
	Admin        *handlers.AdminHandler
	WS           *handlers.WSHandler
	Health       *handlers.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokenManager)
	limited := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	id := middleware.UUIDValidator("id")

	authGroup := api.Group("/auth", limited)
	{
		authGroup.POST("/contact", middleware.FrontendKeyMiddleware(cfg.FrontendAPIKey), h.Auth.ResolveContact)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}
	api.POST("/admin/login", limited, h.Auth.AdminLogin)

	// Публичные маршруты
	api.GET("/skills", h.Catalog.ListSkills)
	api.GET("/jobs", h.Job.ListOpen)
	api.GET("/jobs/:id", id, h.Job.GetJob)
	api.GET("/jobs/:id/reviews", id, h.Review.ListJobReviews)
	api.GET("/users/:id/profile", id, h.Profile.GetProfile)
	api.GET("/users/:id/reviews", id, h.Review.ListUserReviews)
	api.GET("/ws", h.WS.Handle)

	protected := api.Group("/", auth)
	{
		protected.GET("/me", h.Profile.Me)
		protected.PUT("/me/role", h.Profile.SelectRole)
		protected.PUT("/me/bio", h.Profile.UpdateBio)
		protected.POST("/me/skills/:skillId/toggle", middleware.UUIDValidator("skillId"), h.Catalog.ToggleSkill)

		protected.GET("/wallet", h.Wallet.GetWallet)
		protected.GET("/wallet/transactions", h.Wallet.GetWallet)
		protected.GET("/wallet/transactions/:id", id, h.Wallet.GetTransaction)
		protected.GET("/wallet/earnings", h.Wallet.Earnings)
		protected.POST("/wallet/deposits", limited, h.Wallet.RequestDeposit)
		protected.POST("/wallet/deposits/:id/sent", id, limited, h.Wallet.MarkDepositSent)
		protected.POST("/wallet/withdrawals", limited, h.Wallet.RequestWithdrawal)

		protected.POST("/jobs", h.Job.CreateJob)
		protected.POST("/jobs/drafts", h.Job.CreateDraft)
		protected.GET("/jobs/my", h.Job.ListMine)
		protected.POST("/jobs/:id/fund", id, h.Job.FundJob)
		protected.POST("/jobs/:id/cancel", id, h.Job.CancelJob)
		protected.POST("/jobs/:id/complete", id, h.Job.MarkWorkComplete)
		protected.POST("/jobs/:id/confirm", id, h.Job.ConfirmCompletion)
		protected.POST("/jobs/:id/reviews", id, h.Review.SubmitReview)
		protected.GET("/jobs/:id/applications", id, h.Application.ListForJob)
		protected.POST("/jobs/:id/applications", id, h.Application.Apply)

		protected.GET("/applications/my", h.Application.ListMine)
		protected.GET("/applications/:id", id, h.Application.GetApplication)
		protected.POST("/applications/:id/hire", id, h.Job.Hire)
		protected.POST("/applications/:id/reject", id, h.Application.Reject)

		protected.POST("/reports", h.Report.CreateReport)

		protected.GET("/notifications", h.Notification.ListNotifications)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", id, h.Notification.MarkAsRead)
	}

	admin := api.Group("/admin", auth, middleware.AdminOnly())
	{
		admin.GET("/users", h.Admin.ListUsers)
		admin.POST("/users/:id/ban", id, h.Admin.BanUser)
		admin.POST("/users/:id/unban", id, h.Admin.UnbanUser)

		admin.POST("/transactions/:id/confirm-deposit", id, h.Admin.ConfirmDeposit)
		admin.POST("/transactions/:id/reject-deposit", id, h.Admin.RejectDeposit)
		admin.POST("/transactions/:id/confirm-withdrawal", id, h.Admin.ConfirmWithdrawal)
		admin.POST("/transactions/:id/reject-withdrawal", id, h.Admin.RejectWithdrawal)

		admin.GET("/revenue", h.Admin.Revenue)

		admin.GET("/reports", h.Admin.ListReports)
		admin.POST("/reports/:id/review", id, h.Admin.MarkReportReviewed)
	}

	return r
}
