package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/gardenia-api/internal/middleware"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/internal/service"
	"github.com/noah-isme/gardenia-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gardenia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gardenia-api/pkg/middleware/requestid"
)

// Routes groups the handlers and cross-cutting dependencies of the API.
// Tickets may be nil when ticket rendering is disabled.
type Routes struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool

	Tokens  middleware.TokenValidator
	Audit   middleware.AuditWriter
	Metrics *service.MetricsService
	Logger  *zap.Logger

	Auth          *AuthHandler
	Events        *EventHandler
	Registrations *RegistrationHandler
	Decisions     *EntryDecisionHandler
	Tickets       *TicketHandler
	Staff         *StaffHandler
	Dashboard     *DashboardHandler
	Observability *MetricsHandler
}

// NewRouter builds the gin engine with every route mounted under APIPrefix.
func NewRouter(r Routes) *gin.Engine {
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	prefix := "/" + strings.Trim(r.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	app := gin.New()
	app.Use(gin.Recovery())
	app.Use(reqidmiddleware.Middleware())
	app.Use(logger.GinMiddleware(r.Logger))
	app.Use(corsmiddleware.New(r.AllowedOrigins))
	app.Use(middleware.Metrics(r.Metrics))
	app.Use(middleware.WithResponseMeta())

	if r.Observability != nil {
		app.GET("/health", r.Observability.Health)
		app.GET("/ready", r.Observability.Ready)
		app.GET("/metrics", r.Observability.Prometheus)
	}
	if r.EnableDocs {
		app.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := app.Group(prefix)
	authenticated := middleware.JWT(r.Tokens)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	gateStaff := middleware.RequireRoles(models.RoleGatekeeper, models.RoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/login", r.Auth.Login)
	auth.POST("/refresh", r.Auth.Refresh)
	auth.POST("/logout", authenticated, r.Auth.Logout)
	auth.GET("/me", authenticated, r.Auth.Me)

	api.GET("/events", r.Events.List)
	api.GET("/events/:id", r.Events.Get)

	regs := api.Group("/registrations")
	regs.POST("", r.Registrations.Submit)
	regs.GET("", authenticated, adminOnly, r.Registrations.List)
	regs.GET("/validate/:regId", authenticated, gateStaff, r.Registrations.ValidateID)
	regs.POST("/validate", authenticated, gateStaff, r.Registrations.ValidatePayload)
	regs.GET("/:regId", authenticated, adminOnly, r.Registrations.Get)
	regs.PATCH("/:regId/status", authenticated, adminOnly, r.Registrations.UpdateStatus)
	regs.GET("/:regId/entry-decisions", authenticated, gateStaff,
		middleware.Audit(r.Audit, r.Logger, models.AuditActionDecisionReview, "entry_decision"),
		r.Decisions.History)

	decisions := api.Group("/entry-decisions", authenticated)
	decisions.POST("", gateStaff, r.Decisions.Record)
	decisions.GET("", adminOnly,
		middleware.Audit(r.Audit, r.Logger, models.AuditActionDecisionReview, "entry_decision"),
		r.Decisions.List)
	decisions.GET("/export", adminOnly, r.Decisions.Export)

	if r.Staff != nil {
		staff := api.Group("/staff", authenticated, adminOnly)
		staff.GET("", r.Staff.List)
		staff.POST("", r.Staff.Create)
		staff.PATCH("/:id", r.Staff.Update)
	}

	if r.Dashboard != nil {
		api.GET("/dashboard", authenticated, adminOnly, r.Dashboard.Summary)
	}

	if r.Tickets != nil {
		api.GET("/tickets/:token", r.Tickets.Download)
		regs.POST("/:regId/ticket", authenticated, adminOnly, r.Tickets.Requeue)
	}

	return app
}
