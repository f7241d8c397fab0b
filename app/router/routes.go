// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tavolo/tavolo/app/dto"
	"github.com/tavolo/tavolo/app/handlers"
	"github.com/tavolo/tavolo/app/middleware"
	"github.com/tavolo/tavolo/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app               *fiber.App
	authHandler       handlers.AuthHandlerInterface
	restaurantHandler handlers.RestaurantHandlerInterface
	dinerHandler      handlers.DinerHandlerInterface
	campaignHandler   handlers.CampaignHandlerInterface
	offerHandler      handlers.OfferHandlerInterface
	authMiddleware    *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	authHandler handlers.AuthHandlerInterface,
	restaurantHandler handlers.RestaurantHandlerInterface,
	dinerHandler handlers.DinerHandlerInterface,
	campaignHandler handlers.CampaignHandlerInterface,
	offerHandler handlers.OfferHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
) Router {
	// Configure Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Tavolo API",
		ServerHeader: "Tavolo",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:               app,
		authHandler:       authHandler,
		restaurantHandler: restaurantHandler,
		dinerHandler:      dinerHandler,
		campaignHandler:   campaignHandler,
		offerHandler:      offerHandler,
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Prometheus metrics endpoint
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check route at the app root (no rate limiting)
	r.app.Get("/health", r.healthCheck)

	// API routes
	api := r.app.Group("/api/v1")

	// API documentation route (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/docs", r.getAPIDocumentation)
		log.Println("API documentation enabled for development")
	}

	// Apply general rate limiting to all API routes (aligned with nginx)
	api.Use(limiter.New(limiter.Config{
		Max:        2000,            // Maximum 2000 requests (matches nginx api zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")

	// Apply stricter rate limiting to auth endpoints (aligned with nginx)
	auth.Use(limiter.New(limiter.Config{
		Max:        20,              // Maximum 20 requests (matches nginx auth zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))

	// Public identity endpoints
	auth.Get("/check-email", r.authHandler.CheckEmail)

	// Everything below requires an identity provider token
	protected := api.Group("", r.authMiddleware.Authenticate())

	// Restaurant profile endpoints
	protected.Get("/me/restaurant", r.restaurantHandler.GetRestaurant)
	protected.Put("/me/restaurant", r.restaurantHandler.UpsertRestaurant)
	protected.Delete("/me/delete-account", r.restaurantHandler.DeleteAccount)

	// Diner directory endpoints
	protected.Get("/diners", r.dinerHandler.SearchDiners)
	protected.Get("/diners/filter-options", r.dinerHandler.GetFilterOptions)

	// Campaign endpoints
	protected.Post("/campaigns", r.campaignHandler.CreateCampaign)
	protected.Get("/campaigns", r.campaignHandler.ListCampaigns)
	protected.Get("/campaigns/:uuid", r.campaignHandler.GetCampaign)
	protected.Patch("/campaigns/:uuid/status", r.campaignHandler.UpdateCampaignStatus)
	protected.Delete("/campaigns/:uuid", r.campaignHandler.DeleteCampaign)
	protected.Get("/campaigns/:uuid/export", r.campaignHandler.ExportCampaign)

	// Offer copy endpoints
	protected.Post("/ai/offer", r.offerHandler.GenerateOffer)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://tavolo.app",
			"https://api.tavolo.app",
			"https://app.tavolo.app",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Skip compression for binary downloads
			contentType := c.Get("Content-Type")
			return contains(contentType, "image/") ||
				contains(contentType, "spreadsheetml")
		},
	}))

	// Cache middleware for static content
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			// Only cache GET requests to specific endpoints
			return c.Method() != "GET" ||
				!contains(c.Path(), "/health") &&
					!contains(c.Path(), "/docs")
		},
		Expiration:          30 * time.Minute,
		DisableCacheControl: false,
	}))

	// Advanced logging middleware
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/health"
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Custom security middleware
	r.app.Use(r.securityMiddleware)

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	// Add security headers
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "Tavolo")

	// Continue to next middleware
	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "tavolo-api",
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	docs := GetRouteDocumentation()
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "Tavolo API Documentation",
			"version":     "1.0.0",
			"description": "Restaurant marketing and diner outreach API",
			"endpoints":   docs,
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Helper functions

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "GET",
			"path":        "/api/v1/auth/check-email",
			"description": "Check whether an account exists for an email",
			"parameters": map[string]any{
				"email": "string (required) - Email address to check",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/me/restaurant",
			"description": "Get the authenticated owner's restaurant profile",
			"parameters":  map[string]any{},
		},
		{
			"method":      "PUT",
			"path":        "/api/v1/me/restaurant",
			"description": "Create or update the restaurant profile",
			"parameters": map[string]any{
				"name":          "string (required) - Restaurant name",
				"cuisine":       "string (optional) - Cuisine description",
				"city":          "string (optional) - City",
				"state":         "string (optional) - Two letter state code",
				"contact_email": "string (optional) - Contact email",
				"contact_phone": "string (optional) - Contact phone",
				"website_url":   "string (optional) - Website URL",
				"logo_url":      "string (optional) - Logo URL",
				"caption":       "string (optional) - Short caption",
			},
		},
		{
			"method":      "DELETE",
			"path":        "/api/v1/me/delete-account",
			"description": "Delete the restaurant profile with all campaigns and recipients",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/diners",
			"description": "Search the diner directory with structured filters",
			"parameters": map[string]any{
				"city":      "string (optional) - Case-insensitive city substring",
				"state":     "string (optional) - Two letter state code",
				"interests": "string (optional) - Comma separated interest list",
				"match":     "string (optional) - Interest match mode: any|all (default any)",
				"seniority": "string (optional) - Comma separated list of new|established|loyal",
				"channel":   "string (optional) - Restrict to diners eligible for email|sms",
				"page":      "number (optional) - Page number (default 1)",
				"pageSize":  "number (optional) - Page size (default 20, max 100)",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/diners/filter-options",
			"description": "List distinct filter values present in the directory",
			"parameters":  map[string]any{},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/campaigns",
			"description": "Create a campaign and simulate sends to the matched audience",
			"parameters": map[string]any{
				"name":    "string (required) - Campaign name",
				"channel": "string (required) - email|sms",
				"subject": "string (required for email) - Message subject",
				"body":    "string (required) - Message template, may contain {FirstName}",
				"filters": "object (required) - Audience filter",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/campaigns",
			"description": "List campaigns with simulated delivery stats",
			"parameters": map[string]any{
				"page":      "number (optional) - Page number (default 1)",
				"page_size": "number (optional) - Page size (default 20, max 100)",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/campaigns/:uuid",
			"description": "Get one campaign with its full recipient list",
			"parameters": map[string]any{
				"uuid": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "PATCH",
			"path":        "/api/v1/campaigns/:uuid/status",
			"description": "Set a campaign's display status",
			"parameters": map[string]any{
				"status": "string (required) - active|paused|stopped",
			},
		},
		{
			"method":      "DELETE",
			"path":        "/api/v1/campaigns/:uuid",
			"description": "Delete a campaign and its recipients",
			"parameters": map[string]any{
				"uuid": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/campaigns/:uuid/export",
			"description": "Download a campaign and its recipients as an Excel workbook",
			"parameters": map[string]any{
				"uuid": "string (required) - Campaign UUID in URL path",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/ai/offer",
			"description": "Generate offer copy for a channel with template fallback",
			"parameters": map[string]any{
				"channel":     "string (required) - email|sms",
				"cuisine":     "string (optional) - Cuisine to feature",
				"tone":        "string (optional) - Desired tone",
				"goal":        "string (optional) - Campaign goal to aim the copy at",
				"constraints": "string (optional) - Constraints the copy must respect",
			},
		},
		{
			"method":      "GET",
			"path":        "/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}
