package routes

import (
	"speedlog/internal/middleware"
	"speedlog/internal/services"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the read-only dashboard engine. A nil auth serves without tokens.
func NewRouter(limiter *middleware.RateLimiter, whitelist *middleware.IPWhitelist, auth *services.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.IPWhitelistMiddleware(whitelist))
	r.Use(middleware.RateLimitMiddleware(limiter))
	if auth != nil {
		r.Use(middleware.TokenAuthMiddleware(auth.Validate))
	}

	RegisterMetricsRoutes(r)
	RegisterStreamRoutes(r)
	return r
}
