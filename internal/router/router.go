package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/handler"
	"github.com/noah-isme/tutoring-admin-api/internal/middleware"
	"github.com/noah-isme/tutoring-admin-api/internal/models"
	"github.com/noah-isme/tutoring-admin-api/internal/service"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
	"github.com/noah-isme/tutoring-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutoring-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutoring-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Calendar     *handler.CalendarHandler
	Availability *handler.AvailabilityHandler
	Lessons      *handler.LessonHandler
	Payments     *handler.PaymentHandler
	Reports      *handler.ReportHandler
	Exports      *handler.ExportHandler
	Permissions  *handler.PermissionHandler
	Metrics      *handler.MetricsHandler
}

// Config carries the router's wiring.
type Config struct {
	APIPrefix      string
	AllowedOrigins []string
	AllowedHeaders []string
	EnableSwagger  bool

	Tokens      middleware.TokenValidator
	Permissions middleware.CapabilityChecker
	Audit       middleware.AuditRecorder
	Metrics     *service.MetricsService
	Logger      *zap.Logger
}

// New builds the gin engine with every route mounted.
func New(cfg Config, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins, cfg.AllowedHeaders))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.EnableSwagger {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Signed links are mailed out and opened without a session.
	api.GET("/exports/:token", audit(cfg, models.AuditActionExportDownload, "exports"), h.Exports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(cfg.Tokens))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.POST("/auth/change-password", h.Auth.ChangePassword)
	secured.GET("/auth/me", h.Auth.Me)
	secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), h.Metrics.Summary)

	users := secured.Group("/users")
	users.GET("", can(cfg, service.MenuUsers, models.CapabilityRead), h.Users.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleManager), middleware.RoleSelf), h.Users.Get)
	users.POST("", can(cfg, service.MenuUsers, models.CapabilityCreate), h.Users.Create)
	users.PUT("/:id", can(cfg, service.MenuUsers, models.CapabilityUpdate), h.Users.Update)
	users.DELETE("/:id", can(cfg, service.MenuUsers, models.CapabilityDelete), h.Users.Delete)

	// Sync checks create/update/delete per operation kind inside the service.
	// Calendar clients read {success:false} bodies, including auth rejections.
	cal := api.Group("/calendar",
		middleware.FailWith(response.CalendarError),
		middleware.JWT(cfg.Tokens),
		can(cfg, service.MenuCalendar, models.CapabilityRead))
	cal.GET("", h.Calendar.Load)
	cal.POST("/sync", h.Calendar.Sync)
	cal.GET("/events/:id/editable", h.Calendar.Editable)
	cal.GET("/duration", h.Calendar.Duration)

	avail := secured.Group("/availability")
	avail.GET("", can(cfg, service.MenuAvailability, models.CapabilityRead), h.Availability.List)
	avail.POST("", can(cfg, service.MenuAvailability, models.CapabilityCreate), h.Availability.Create)
	avail.DELETE("/:id", can(cfg, service.MenuAvailability, models.CapabilityDelete), h.Availability.Delete)

	lessons := secured.Group("/lessons", can(cfg, service.MenuLessons, models.CapabilityRead))
	lessons.GET("", h.Lessons.List)
	lessons.GET("/:id", h.Lessons.Get)

	payments := secured.Group("/payments")
	payments.GET("", can(cfg, service.MenuPayments, models.CapabilityRead), h.Payments.List)
	payments.POST("", can(cfg, service.MenuPayments, models.CapabilityCreate), h.Payments.Create)

	reports := secured.Group("/reports")
	reports.GET("/salary", can(cfg, service.MenuReports, models.CapabilityRead), h.Reports.Salary)
	reports.POST("/salary/adjustments", can(cfg, service.MenuReports, models.CapabilityCreate), h.Reports.PostAdjustments)
	reports.POST("/daily", can(cfg, service.MenuReports, models.CapabilityCreate),
		audit(cfg, models.AuditActionReportTrigger, "reports"), h.Reports.TriggerDaily)

	secured.GET("/exports/lessons", can(cfg, service.MenuLessons, models.CapabilityDownload), h.Exports.Lessons)

	perms := secured.Group("/permissions")
	perms.GET("/check", h.Permissions.Check)
	perms.GET("", can(cfg, service.MenuPermissions, models.CapabilityRead), h.Permissions.List)
	perms.GET("/menus", can(cfg, service.MenuPermissions, models.CapabilityRead), h.Permissions.Menus)
	perms.PUT("", can(cfg, service.MenuPermissions, models.CapabilityUpdate), h.Permissions.Set)
	perms.POST("", can(cfg, service.MenuPermissions, models.CapabilityCreate), h.Permissions.Create)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	return r
}

func can(cfg Config, menuPath string, capability models.Capability) gin.HandlerFunc {
	return middleware.RequireCapability(cfg.Permissions, menuPath, capability)
}

func audit(cfg Config, action, resource string) gin.HandlerFunc {
	if cfg.Audit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.Audit(cfg.Audit, action, resource, cfg.Logger)
}
