package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bicired/bicired-api/api/swagger"
	"github.com/bicired/bicired-api/internal/handler"
	"github.com/bicired/bicired-api/internal/middleware"
	"github.com/bicired/bicired-api/internal/service"
	"github.com/bicired/bicired-api/pkg/config"
	"github.com/bicired/bicired-api/pkg/logger"
	corsmiddleware "github.com/bicired/bicired-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bicired/bicired-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Bicycle      *handler.BicycleHandler
	BicycleModel *handler.BicycleModelHandler
	Submission   *handler.SubmissionHandler
	Booking      *handler.BookingHandler
	ExitForm     *handler.ExitFormHandler
	Schedule     *handler.ScheduleHandler
	KPI          *handler.KPIHandler
}

// New assembles the gin engine: global middleware, operational endpoints and
// the versioned API surface with its auth rules.
func New(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authn := middleware.JWT(auth)
	staff := middleware.RequireStaff()
	admin := middleware.RequireRoles("ADMIN")

	api := r.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", authn, h.Auth.Logout)
		authGroup.POST("/change-password", authn, h.Auth.ChangePassword)
	}

	users := api.Group("/users")
	{
		users.POST("/signup", h.User.Signup)
		users.GET("/me", authn, h.User.Me)
		users.GET("", authn, staff, h.User.List)
		users.GET("/:id", authn, middleware.RBAC("ADMIN", "STAFF", middleware.SelfRole), h.User.Get)
		users.PUT("/:id", authn, middleware.RBAC("ADMIN", "STAFF", middleware.SelfRole), h.User.Update)
		users.DELETE("/:id", authn, staff, h.User.Delete)
		users.POST("/:id/history", authn, staff, h.User.AddHistory)
		users.GET("/:id/history", authn, staff, h.User.History)
	}

	bicycles := api.Group("/bicycles", authn, staff)
	{
		bicycles.GET("", h.Bicycle.List)
		bicycles.GET("/qr/:code", h.Bicycle.GetByQRCode)
		bicycles.GET("/:id", h.Bicycle.Get)
		bicycles.POST("", h.Bicycle.Create)
		bicycles.PUT("/:id", h.Bicycle.Update)
		bicycles.POST("/:id/history", h.Bicycle.AddHistory)
		bicycles.GET("/:id/history", h.Bicycle.History)
	}

	models := api.Group("/bicycle-models")
	{
		models.GET("", authn, h.BicycleModel.List)
		models.GET("/available", authn, h.BicycleModel.ListAvailable)
		models.GET("/:id", authn, h.BicycleModel.Get)
		models.POST("", authn, staff, h.BicycleModel.Create)
		models.PUT("/:id", authn, staff, h.BicycleModel.Update)
		models.DELETE("/:id", authn, staff, h.BicycleModel.Delete)
	}

	submissions := api.Group("/submissions", authn)
	{
		submissions.POST("", h.Submission.Create)
		submissions.GET("/mine", h.Submission.Mine)
		submissions.GET("", staff, h.Submission.List)
		submissions.GET("/:id", staff, h.Submission.Get)
		submissions.PUT("/:id/reassign", staff, h.Submission.Reassign)
		submissions.DELETE("/:id", staff, h.Submission.Delete)
	}

	bookings := api.Group("/bookings", authn)
	{
		bookings.GET("/mine", h.Booking.Mine)
		bookings.GET("", staff, h.Booking.List)
		bookings.POST("", staff, h.Booking.Create)
		bookings.POST("/terminate", staff, h.Booking.Terminate)
		bookings.GET("/:id", staff, h.Booking.Get)
		bookings.PUT("/:id", staff, h.Booking.Update)
		bookings.DELETE("/:id", admin, h.Booking.Delete)
	}

	exitForms := api.Group("/exit-forms", authn)
	{
		exitForms.PUT("", h.ExitForm.Upsert)
		exitForms.GET("/:id", staff, h.ExitForm.Get)
		exitForms.GET("/booking/:id", staff, h.ExitForm.GetByBooking)
		exitForms.GET("/user/:id", staff, h.ExitForm.ListByUser)
	}

	schedule := api.Group("/schedule")
	{
		schedule.GET("", h.Schedule.Get)
		schedule.PUT("", authn, admin, h.Schedule.Update)
		schedule.GET("/available", authn, h.Schedule.Available)
		schedule.POST("/choose", authn, h.Schedule.ChooseDate)
		schedule.GET("/agenda/returns", authn, staff, h.Schedule.BookingAgenda)
		schedule.GET("/agenda/pickups", authn, staff, h.Schedule.SubmissionAgenda)
		schedule.POST("/exports", authn, staff, h.Schedule.CreateExport)
		schedule.GET("/exports/:id", authn, staff, h.Schedule.ExportStatus)
		// Download authenticates through the signed token in the URL so the
		// file can be fetched from a plain browser link.
		schedule.GET("/exports/download", h.Schedule.DownloadExport)
	}

	if cfg.KPI.Enabled {
		kpi := api.Group("/kpi", authn, staff)
		kpi.GET("/emissions", h.KPI.Emissions)
	}

	return r
}
