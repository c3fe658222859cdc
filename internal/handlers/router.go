package handlers

import (
	"real-estate-crm/internal/alerts"
	"real-estate-crm/internal/auth"
	"real-estate-crm/internal/cache"
	"real-estate-crm/internal/config"
	"real-estate-crm/internal/database"
	"real-estate-crm/internal/history"
	"real-estate-crm/internal/logger"
	"real-estate-crm/internal/middleware"
	"real-estate-crm/internal/models"
	"real-estate-crm/internal/ratelimit"
	"real-estate-crm/internal/scheduler"
	"real-estate-crm/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP layer is built from. Search, Scheduler and
// LoginLimiter are optional.
type Deps struct {
	DB           *database.GormDB
	Config       *config.Config
	Tokens       *auth.TokenService
	TokenStore   cache.TokenStore
	Search       search.Engine
	Scheduler    *scheduler.Scheduler
	LoginLimiter *ratelimit.KeyedLimiter
}

// NewRouter wires every route of the API
func NewRouter(d Deps) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	if d.Config.Logging.LogRequests {
		r.Use(middleware.RequestLogger(logger.Log))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	authn := middleware.NewAuthenticator(d.Tokens, d.TokenStore, d.DB)
	requireAuth := authn.RequireAuth()
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	alertSvc := alerts.NewService(d.DB.DB())
	alertCfg := alerts.Config{
		PaymentDueDays:     d.Config.Scheduler.PaymentDueDays,
		ContractExpiryDays: d.Config.Scheduler.ContractExpiryDays,
	}

	authHandler := NewAuthHandler(d.DB, d.Tokens, d.TokenStore, d.Config.Auth.BcryptCost)
	clientHandler := NewClientHandler(d.DB)
	propertyHandler := NewPropertyHandler(d.DB, history.NewService(d.DB.DB()), d.Search)
	calendarHandler := NewCalendarHandler(d.DB)
	rentalHandler := NewRentalHandler(d.DB, alertSvc, alertCfg)
	maintenanceHandler := NewMaintenanceHandler(d.DB)
	documentHandler := NewDocumentHandler(d.DB)
	adminHandler := NewAdminHandler(d.DB, d.Scheduler, d.Config.Cleanup)

	r.GET("/health", Health(d.DB))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		login := []gin.HandlerFunc{}
		if d.LoginLimiter != nil {
			login = append(login, middleware.LoginRateLimit(d.LoginLimiter))
		}
		authGroup.POST("/login", append(login, authHandler.Login)...)
		authGroup.POST("/register", authn.OptionalAuth(), authHandler.Register)
		authGroup.GET("/me", requireAuth, authHandler.Me)
		authGroup.POST("/logout", requireAuth, authHandler.Logout)
		authGroup.PUT("/password", requireAuth, authHandler.ChangePassword)
		authGroup.GET("/users", requireAuth, adminOnly, authHandler.ListUsers)
		authGroup.PUT("/users/:id", requireAuth, adminOnly, authHandler.UpdateUser)
		authGroup.DELETE("/users/:id", requireAuth, adminOnly, authHandler.DeleteUser)
	}

	clients := api.Group("/clients", requireAuth)
	{
		clients.GET("", clientHandler.ListClients)
		clients.GET("/export", clientHandler.Export)
		clients.POST("", clientHandler.CreateClient)
		clients.GET("/:id", clientHandler.GetClient)
		clients.PUT("/:id", clientHandler.UpdateClient)
		clients.DELETE("/:id", clientHandler.DeleteClient)

		clients.GET("/:id/needs", clientHandler.ListNeeds)
		clients.POST("/:id/needs", clientHandler.CreateNeed)
		clients.PUT("/:id/needs/:needId", clientHandler.UpdateNeed)
		clients.DELETE("/:id/needs/:needId", clientHandler.DeleteNeed)

		clients.GET("/:id/interactions", clientHandler.ListInteractions)
		clients.POST("/:id/interactions", clientHandler.CreateInteraction)
		clients.DELETE("/:id/interactions/:interactionId", clientHandler.DeleteInteraction)

		clients.GET("/:id/matches", clientHandler.Matches)
	}

	properties := api.Group("/properties", requireAuth)
	{
		properties.GET("", propertyHandler.ListProperties)
		properties.GET("/search", propertyHandler.SearchProperties)
		properties.GET("/export", propertyHandler.Export)
		properties.POST("", propertyHandler.CreateProperty)
		properties.GET("/:id", propertyHandler.GetProperty)
		properties.PUT("/:id", propertyHandler.UpdateProperty)
		properties.DELETE("/:id", propertyHandler.DeleteProperty)
		properties.GET("/:id/history", propertyHandler.GetHistory)
		properties.POST("/:id/media", propertyHandler.AddMedia)
		properties.DELETE("/:id/media/:mediaId", propertyHandler.DeleteMedia)
	}

	calendar := api.Group("/calendar", requireAuth)
	{
		calendar.GET("/visits", calendarHandler.ListVisits)
		calendar.GET("/visits/:id", calendarHandler.GetVisit)
		calendar.GET("/conflicts", calendarHandler.Conflicts)
		calendar.POST("/visits", calendarHandler.CreateVisit)
		calendar.PUT("/visits/:id", calendarHandler.UpdateVisit)
		calendar.PATCH("/visits/:id/status", calendarHandler.UpdateVisitStatus)
		calendar.DELETE("/visits/:id", calendarHandler.DeleteVisit)
	}

	rental := api.Group("/rental", requireAuth)
	{
		rental.GET("/contracts", rentalHandler.ListContracts)
		rental.POST("/contracts", rentalHandler.CreateContract)
		rental.GET("/contracts/:id", rentalHandler.GetContract)
		rental.PUT("/contracts/:id", rentalHandler.UpdateContract)
		rental.DELETE("/contracts/:id", rentalHandler.DeleteContract)
		rental.POST("/contracts/:id/payments/generate", rentalHandler.GeneratePayments)
		rental.GET("/contracts/:id/documents", rentalHandler.ListDocuments)
		rental.POST("/contracts/:id/documents", rentalHandler.CreateDocument)
		rental.DELETE("/documents/:id", rentalHandler.DeleteDocument)

		rental.GET("/payments", rentalHandler.ListPayments)
		rental.GET("/payments/export", rentalHandler.ExportPayments)
		rental.POST("/payments", rentalHandler.CreatePayment)
		rental.PUT("/payments/:id", rentalHandler.UpdatePayment)
		rental.POST("/payments/:id/pay", rentalHandler.RecordPayment)
		rental.DELETE("/payments/:id", rentalHandler.DeletePayment)

		rental.GET("/alerts", rentalHandler.ListAlerts)
		rental.PUT("/alerts/:id/read", rentalHandler.MarkAlertRead)
		rental.POST("/alerts/generate", adminOnly, rentalHandler.GenerateAlerts)
	}

	maintenance := api.Group("/maintenance", requireAuth)
	{
		maintenance.GET("", maintenanceHandler.ListMaintenance)
		maintenance.POST("", maintenanceHandler.CreateMaintenance)
		maintenance.GET("/:id", maintenanceHandler.GetMaintenance)
		maintenance.PUT("/:id", maintenanceHandler.UpdateMaintenance)
		maintenance.DELETE("/:id", maintenanceHandler.DeleteMaintenance)
		maintenance.POST("/:id/photos", maintenanceHandler.AddPhoto)
		maintenance.DELETE("/:id/photos/:photoId", maintenanceHandler.DeletePhoto)
	}

	documents := api.Group("/documents", requireAuth)
	{
		documents.GET("", documentHandler.ListDocuments)
		documents.POST("", documentHandler.CreateDocument)
		documents.GET("/:id", documentHandler.GetDocument)
		documents.PUT("/:id", documentHandler.UpdateDocument)
		documents.DELETE("/:id", documentHandler.DeleteDocument)
	}

	admin := api.Group("/admin", requireAuth, adminOnly)
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/city-stats", adminHandler.GetCityStats)
		admin.GET("/changes/recent", adminHandler.GetRecentChanges)
		admin.POST("/cleanup/run", adminHandler.RunCleanup)
		admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)
		admin.POST("/jobs/run", adminHandler.RunDailyJobs)
		admin.POST("/search/reindex", propertyHandler.Reindex)
	}

	return r
}
