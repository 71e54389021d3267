package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validator "github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campushub/room-booking-api/api/swagger"
	"github.com/campushub/room-booking-api/internal/handler"
	"github.com/campushub/room-booking-api/internal/middleware"
	"github.com/campushub/room-booking-api/internal/models"
	"github.com/campushub/room-booking-api/internal/repository"
	"github.com/campushub/room-booking-api/internal/service"
	"github.com/campushub/room-booking-api/pkg/cache"
	"github.com/campushub/room-booking-api/pkg/config"
	"github.com/campushub/room-booking-api/pkg/database"
	"github.com/campushub/room-booking-api/pkg/logger"
	corsmiddleware "github.com/campushub/room-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/room-booking-api/pkg/middleware/requestid"
)

// @title Room Booking API
// @version 1.0.0
// @description Room booking administration for lecturers and campus admins
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, running without cache", zap.Error(err))
	} else {
		defer client.Close()
		cacheRepo := repository.NewCacheRepository(client, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	policy, err := service.NewSchedulingPolicy(cfg.Booking)
	if err != nil {
		logr.Sugar().Fatalw("invalid booking configuration", "error", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	venueTypeRepo := repository.NewVenueTypeRepository(db)
	userRepo := repository.NewUserRepository(db)

	locks := service.NewSlotLocks()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})
	userSvc := service.NewUserService(userRepo, logr)
	bookingSvc := service.NewBookingService(bookingRepo, locks, policy, validate, logr)
	recurringSvc := service.NewRecurringBookingService(bookingRepo, userRepo, locks, policy, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, bookingRepo, locationRepo, venueTypeRepo, policy, validate, logr)
	catalogSvc := service.NewCatalogService(locationRepo, venueTypeRepo, validate, logr)
	reportSvc := service.NewReportService(bookingRepo, logr)

	var dashboardSvc *service.DashboardService
	var dashboardHandler *handler.DashboardHandler
	if cfg.Dashboard.Enabled {
		dashboardSvc = service.NewDashboardService(bookingRepo, roomRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
		dashboardHandler = handler.NewDashboardHandler(dashboardSvc)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, handlers{
		auth:      handler.NewAuthHandler(authSvc),
		users:     handler.NewUserHandler(userSvc),
		bookings:  handler.NewBookingHandler(bookingSvc, recurringSvc, dashboardSvc, metricsSvc),
		rooms:     handler.NewRoomHandler(roomSvc),
		catalog:   handler.NewCatalogHandler(catalogSvc),
		dashboard: dashboardHandler,
		reports:   handler.NewReportHandler(reportSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

type handlers struct {
	auth      *handler.AuthHandler
	users     *handler.UserHandler
	bookings  *handler.BookingHandler
	rooms     *handler.RoomHandler
	catalog   *handler.CatalogHandler
	dashboard *handler.DashboardHandler
	reports   *handler.ReportHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h handlers, authSvc *service.AuthService) {
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", h.auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", h.auth.Me)

	authed.GET("/rooms", h.rooms.List)
	authed.POST("/rooms/search", h.rooms.Search)
	authed.GET("/rooms/:id", h.rooms.Get)

	authed.GET("/locations", h.catalog.ListLocations)
	authed.GET("/venue-types", h.catalog.ListVenueTypes)

	authed.GET("/bookings/time-slots", h.bookings.TimeSlots)
	authed.POST("/bookings/check-availability", h.bookings.CheckAvailability)
	authed.POST("/bookings", h.bookings.Create)
	authed.DELETE("/bookings/:id", h.bookings.Cancel)
	authed.GET("/users/:id/bookings", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.bookings.Schedule)
	authed.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.users.Get)

	if h.dashboard != nil {
		authed.GET("/dashboard/lecturer", h.dashboard.Lecturer)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.GET("/bookings", h.bookings.List)
	admin.POST("/bookings/recurring", h.bookings.CreateRecurring)
	admin.POST("/bookings/recurring/preview", h.bookings.PreviewConflicts)

	admin.GET("/lecturers", h.users.ListLecturers)

	admin.POST("/rooms", h.rooms.Create)
	admin.PUT("/rooms/:id", h.rooms.Update)
	admin.DELETE("/rooms/:id", h.rooms.Delete)

	admin.POST("/locations", h.catalog.CreateLocation)
	admin.PUT("/locations/:id", h.catalog.UpdateLocation)
	admin.DELETE("/locations/:id", h.catalog.DeleteLocation)

	admin.POST("/venue-types", h.catalog.CreateVenueType)
	admin.PUT("/venue-types/:id", h.catalog.UpdateVenueType)
	admin.DELETE("/venue-types/:id", h.catalog.DeleteVenueType)

	if h.dashboard != nil {
		admin.GET("/dashboard/admin", h.dashboard.Admin)
	}

	if cfg.Reports.Enabled {
		admin.GET("/reports/bookings", h.reports.BookingReport)
	}
}
