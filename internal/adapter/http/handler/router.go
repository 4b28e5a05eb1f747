package handler

import (
	"asset-marketplace/internal/adapter/http/middleware"
	redisStore "asset-marketplace/internal/adapter/storage/redis"
	"asset-marketplace/internal/adapter/ws"
	"asset-marketplace/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	MarketSvc      ports.MarketplaceService
	TokenSvc       ports.TokenService
	Journal        ports.EventJournal
	Hub            *ws.Hub                    // nil = websocket feed disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	PriceDecimals  int32
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	marketHandler := NewMarketplaceHandler(deps.MarketSvc, deps.PriceDecimals)
	eventsHandler := NewEventsHandler(deps.Journal, deps.PriceDecimals)

	// Listings are publicly readable; the event feed too.
	v1.GET("/listings/:asset/:id", marketHandler.GetListing)
	v1.GET("/events", eventsHandler.ListRecent)

	if deps.Hub != nil {
		r.GET("/ws/events", gin.WrapH(deps.Hub))
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	listings := v1.Group("/listings", jwtAuth)
	{
		listings.POST("", rl("listings"), marketHandler.ListItem)
		listings.DELETE("/:asset/:id", rl("listings"), marketHandler.CancelListing)
		listings.PUT("/:asset/:id", rl("listings"), marketHandler.UpdateListing)
		listings.POST("/:asset/:id/buy", rl("buy"), marketHandler.BuyItem)
	}

	proceeds := v1.Group("/proceeds", jwtAuth)
	{
		proceeds.GET("", marketHandler.GetProceeds)
		proceeds.POST("/withdraw", rl("withdraw"), marketHandler.WithdrawProceeds)
	}

	return r
}
