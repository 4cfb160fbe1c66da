package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/bodhmantraa/bodhmantraa-api/internal/handler"
	"github.com/bodhmantraa/bodhmantraa-api/internal/middleware"
	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/service"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/config"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/logger"
	corsmiddleware "github.com/bodhmantraa/bodhmantraa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bodhmantraa/bodhmantraa-api/pkg/middleware/requestid"
)

type routerServices struct {
	auth     *service.AuthService
	mentors  *service.MentorService
	requests *service.RequestService
	reviews  *service.ReviewService
	admin    *service.AdminService
	metrics  *service.MetricsService
}

func setupRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, svcs routerServices) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svcs.metrics))

	metricsHandler := handler.NewMetricsHandler(svcs.metrics)
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

	authHandler := handler.NewAuthHandler(svcs.auth)
	mentorHandler := handler.NewMentorHandler(svcs.mentors)
	requestHandler := handler.NewRequestHandler(svcs.requests, svcs.reviews)
	adminHandler := handler.NewAdminHandler(svcs.admin)

	authn := middleware.JWT(svcs.auth)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	mentorOnly := middleware.RequireRoles(models.RoleMentor)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/student/register", authHandler.RegisterStudent)
		auth.POST("/mentor/register", authHandler.RegisterMentor)
		auth.POST("/login", authHandler.Login)
	}

	mentors := api.Group("/mentors")
	{
		mentors.GET("", mentorHandler.List)
		mentors.GET("/me/profile", authn, mentorOnly, mentorHandler.MyProfile)
		mentors.PUT("/me/profile", authn, mentorOnly, mentorHandler.UpdateProfile)
		mentors.PUT("/me/availability", authn, mentorOnly, mentorHandler.UpdateAvailability)
		mentors.GET("/:id", mentorHandler.Get)
	}

	requests := api.Group("/requests", authn)
	{
		requests.POST("", studentOnly, requestHandler.Create)
		requests.GET("/me", studentOnly, requestHandler.ListMine)
		requests.GET("/mentor/me", mentorOnly, requestHandler.ListAssigned)
		requests.PATCH("/:id/status", mentorOnly, requestHandler.UpdateStatus)
		requests.POST("/:id/complete", studentOnly, requestHandler.Complete)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/login", authHandler.AdminLogin)

		protected := admin.Group("", authn, adminOnly)
		protected.GET("/students", adminHandler.ListStudents)
		protected.GET("/mentors", adminHandler.ListMentors)
		protected.GET("/requests", adminHandler.ListRequests)
		protected.GET("/users", adminHandler.ListUsers)
		protected.GET("/stats", adminHandler.Stats)
		protected.PUT("/mentors/:id/approve", adminHandler.ApproveMentor)
		protected.PUT("/mentors/:id/reject", adminHandler.RejectMentor)
		protected.GET("/exports/requests", adminHandler.ExportRequests)
	}

	return r
}
