package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/marketprime/marketplace-api/docs"
	"github.com/marketprime/marketplace-api/internal/api/handler"
	"github.com/marketprime/marketplace-api/internal/api/middleware"
	"github.com/marketprime/marketplace-api/internal/core/ports"
	"github.com/marketprime/marketplace-api/internal/core/service"
	"github.com/marketprime/marketplace-api/internal/infrastructure/config"
	"github.com/marketprime/marketplace-api/internal/infrastructure/http/handlers"
)

// Dependencies carries everything the router needs. main builds the services
// once so it can run index creation and admin seeding against the same
// instances the routes use.
type Dependencies struct {
	Config   *config.Config
	Auth     *service.AuthService
	Listings ports.ListingService
	Leads    ports.LeadService
	Images   handler.ImageStore
	Mongo    *mongo.Database
	Redis    *redis.Client
	Logger   zerolog.Logger
}

// NewRouter builds the Echo instance with all middleware and routes wired.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Config.Development())

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.Config.ClientOrigin},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	jar := middleware.NewCookieJar(deps.Config.Env)
	authed := middleware.Auth(deps.Auth.Tokens(), deps.Auth)
	adminOnly := middleware.AdminOnly()

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Auth.Tokens(), jar)
	adminHandler := handler.NewAdminHandler(deps.Auth, deps.Auth.Tokens(), jar)
	listingHandler := handler.NewListingHandler(deps.Listings, deps.Images)
	leadHandler := handler.NewLeadHandler(deps.Leads)

	// Operational surface outside the /api prefix.
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Mongo, deps.Redis).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/images", deps.Config.Upload.Dir)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/verify", authHandler.Verify, authed)
	auth.GET("/me", authHandler.Me, authed)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)
	admin.POST("/logout", adminHandler.Logout)
	admin.GET("/verify", adminHandler.Verify, authed, adminOnly)

	products := api.Group("/products")
	products.GET("", listingHandler.ListApproved)
	products.GET("/:id", listingHandler.Get)
	products.POST("/create", listingHandler.Create, authed)
	products.PUT("/:id", listingHandler.Update, authed)
	products.DELETE("/:id", listingHandler.Delete, authed)
	products.GET("/admin/all", listingHandler.ListAll, authed, adminOnly)
	products.GET("/admin/pending", listingHandler.ListPending, authed, adminOnly)
	products.PATCH("/admin/status/:id", listingHandler.Moderate, authed, adminOnly)

	forms := api.Group("/forms")
	forms.POST("/create", leadHandler.Create, authed)
	forms.GET("", leadHandler.List)
	forms.GET("/:id", leadHandler.Get)
	forms.PATCH("/:id/status", leadHandler.UpdateStatus, authed)

	return e
}
