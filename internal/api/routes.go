package api

import (
	"alcyxob/gym-app/internal/config"
	"alcyxob/gym-app/internal/domain" // Needed for RoleMiddleware
	"alcyxob/gym-app/internal/logging"
	"alcyxob/gym-app/internal/metrics"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Services bundles everything the handlers call.
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Packages      service.PackageService
	Subscriptions service.SubscriptionService
	Sessions      service.SessionService
	History       service.HistoryService
	Reviews       service.ReviewService
	Templates     service.TemplateService
	Schedules     service.ScheduleService
	Meals         service.MealService
	Checkin       service.CheckinService
	Uploads       service.UploadService
	Dashboard     service.DashboardService
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg *config.Config, svc Services, m *metrics.Metrics, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger(log, ContextUserIDKey))
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	if m != nil {
		router.Use(m.Middleware())
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	SetupRoutes(router, cfg, svc, log)
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	c.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}

func SetupRoutes(router *gin.Engine, cfg *config.Config, svc Services, log logrus.FieldLogger) {
	authHandler := NewAuthHandler(svc.Auth, log)
	userHandler := NewUserHandler(svc.Users, log)
	packageHandler := NewPackageHandler(svc.Packages, log)
	subscriptionHandler := NewSubscriptionHandler(svc.Subscriptions, log)
	sessionHandler := NewSessionHandler(svc.Sessions, log)
	historyHandler := NewHistoryHandler(svc.History, log)
	reviewHandler := NewReviewHandler(svc.Reviews, log)
	templateHandler := NewTemplateHandler(svc.Templates, log)
	scheduleHandler := NewScheduleHandler(svc.Schedules, log)
	mealHandler := NewMealHandler(svc.Meals, log)
	checkinHandler := NewCheckinHandler(svc.Checkin, log)
	uploadHandler := NewUploadHandler(svc.Uploads, log)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, log)

	authMiddleware := AuthMiddleware(svc.Auth.GetJWTSecret())
	loginLimiter := NewRateLimiter(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst)
	scanLimiter := NewRateLimiter(cfg.RateLimit.ScanRPS, cfg.RateLimit.ScanBurst)

	member := RoleMiddleware(domain.RoleMember)
	trainer := RoleMiddleware(domain.RoleTrainer)
	owner := RoleMiddleware(domain.RoleOwner)
	staff := RoleMiddleware(domain.RoleOwner, domain.RoleTrainer)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", loginLimiter.Middleware(byClientIP), authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateMe)
		protected.PUT("/me/password", authHandler.ChangePassword)

		// --- Members ---
		protected.GET("/hoivien", staff, userHandler.ListMembers)
		protected.GET("/hoivien/:maHoiVien", userHandler.GetMember)
		protected.PUT("/hoivien/:maHoiVien/trang-thai", owner, userHandler.SetMemberStatus)

		// --- Packages ---
		packageGroup := protected.Group("/goitap")
		{
			packageGroup.GET("", packageHandler.ListPackages)
			packageGroup.GET("/so-sanh", packageHandler.ComparePackages)
			packageGroup.GET("/:id", packageHandler.GetPackage)
			packageGroup.POST("", owner, packageHandler.CreatePackage)
			packageGroup.PUT("/:id", owner, packageHandler.UpdatePackage)
			packageGroup.DELETE("/:id", owner, packageHandler.DeletePackage)
		}

		// --- Registrations ---
		subscriptionGroup := protected.Group("/dangky")
		{
			subscriptionGroup.POST("", member, subscriptionHandler.Register)
			subscriptionGroup.GET("", owner, subscriptionHandler.List)
			subscriptionGroup.GET("/cua-toi", member, subscriptionHandler.ListMine)
			subscriptionGroup.PUT("/:id/xac-nhan", owner, subscriptionHandler.Confirm)
			subscriptionGroup.PUT("/:id/huy", RoleMiddleware(domain.RoleMember, domain.RoleOwner), subscriptionHandler.Cancel)
		}

		// --- PT routes, answered with {success, data} ---
		ptGroup := protected.Group("/pt")
		{
			ptGroup.POST("", owner, userHandler.CreateTrainer)
			ptGroup.GET("", userHandler.ListTrainers)

			ptGroup.POST("/buoitap", trainer, sessionHandler.CreateSession)
			ptGroup.GET("/buoitap", trainer, sessionHandler.ListTrainerSessions)
			ptGroup.PUT("/buoitap/:id/trang-thai", trainer, sessionHandler.UpdateSessionStatus)

			ptGroup.GET("/templates", trainer, templateHandler.ListTemplates)
			ptGroup.POST("/templates", trainer, templateHandler.CreateTemplate)
			ptGroup.PUT("/templates/:id", trainer, templateHandler.UpdateTemplate)
			ptGroup.DELETE("/templates/:id", trainer, templateHandler.DeleteTemplate)

			ptGroup.GET("/work-schedule", trainer, scheduleHandler.MySchedule)
			ptGroup.PUT("/work-schedule", trainer, scheduleHandler.ReplaceSchedule)

			ptGroup.POST("/thucdon", trainer, mealHandler.CreateMealPlan)
			ptGroup.GET("/thucdon", trainer, mealHandler.TrainerMealPlans)

			ptGroup.GET("/danhgia/cua-toi", trainer, reviewHandler.MyReviews)

			ptGroup.GET("/:maPT", userHandler.GetTrainer)
			ptGroup.GET("/:maPT/danhgia", reviewHandler.TrainerReviews)
			ptGroup.GET("/:maPT/work-schedule", scheduleHandler.TrainerSchedule)
		}

		protected.GET("/buoitap/cua-toi", member, sessionHandler.ListMySessions)

		// --- Workout history ---
		historyGroup := protected.Group("/lichsutap")
		{
			historyGroup.POST("", RoleMiddleware(domain.RoleMember, domain.RoleTrainer), historyHandler.RecordHistory)
			historyGroup.GET("/hoivien/:maHoiVien", historyHandler.ListMemberHistory)
			historyGroup.GET("/hoivien/:maHoiVien/thong-ke", historyHandler.MemberStats)
			historyGroup.DELETE("/:id", historyHandler.DeleteHistory)
		}

		protected.POST("/danhgia", member, reviewHandler.CreateReview)

		// --- Nutrition ---
		mealGroup := protected.Group("/monan")
		{
			mealGroup.GET("", mealHandler.SearchMeals)
			mealGroup.GET("/:id", mealHandler.GetMeal)
			mealGroup.POST("", staff, mealHandler.CreateMeal)
			mealGroup.PUT("/:id", staff, mealHandler.UpdateMeal)
			mealGroup.DELETE("/:id", staff, mealHandler.DeleteMeal)
		}
		protected.GET("/thucdon/cua-toi", member, mealHandler.MyMealPlans)

		// --- Check-in ---
		checkinGroup := protected.Group("/checkin")
		{
			checkinGroup.GET("/qr", owner, checkinHandler.IssueQR)
			checkinGroup.POST("/scan", member, scanLimiter.Middleware(byUser), checkinHandler.Scan)
			checkinGroup.GET("/cua-toi", member, checkinHandler.MyVisits)
			checkinGroup.GET("/hom-nay", owner, checkinHandler.Today)
		}

		// --- Uploads ---
		protected.POST("/uploads/url", uploadHandler.RequestUploadURL)
		protected.GET("/uploads/url", uploadHandler.DownloadURL)

		protected.GET("/thong-ke/tong-quan", owner, dashboardHandler.Overview)
	}
}
