// Package httptransport builds the gin engine, middleware stack, and REST
// routes of the server.
package httptransport

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"voicelab-server-go/internal/domain/auth"
	"voicelab-server-go/internal/platform/config"
	"voicelab-server-go/internal/platform/logging"
)

// Options configures the router builder.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
	Auth   *auth.Service
}

// Router bundles the engine with the common route groups.
type Router struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	Secured *gin.RouterGroup
}

// Build constructs the engine with recovery, logging, CORS, and the static
// frontend mount. Handlers attach to API (open) or Secured (token-gated when
// auth is enabled).
func Build(opts Options) *Router {
	if opts.Config != nil && opts.Config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(opts.Logger))
	engine.SetTrustedProxies(nil)

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Client-Id"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if opts.Config != nil && opts.Config.Web.Enabled {
		engine.Use(static.Serve("/", static.LocalFile(opts.Config.Web.StaticDir, true)))
	}

	api := engine.Group("/api")
	secured := api.Group("")
	if opts.Auth != nil && opts.Auth.Enabled() {
		secured.Use(AuthMiddleware(opts.Auth))
	}

	return &Router{Engine: engine, API: api, Secured: secured}
}

// AuthMiddleware validates bearer tokens and stashes the client id.
func AuthMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			RespondError(c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}

		claims, err := svc.VerifyToken(token)
		if err != nil {
			RespondError(c, http.StatusUnauthorized, "invalid token", nil)
			c.Abort()
			return
		}
		c.Set("client_id", claims.ClientID)
		c.Next()
	}
}

// ClientID resolves the caller identity: token claims first, then the
// Client-Id header, then a shared anonymous bucket.
func ClientID(c *gin.Context) string {
	if v, ok := c.Get("client_id"); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	if id := c.GetHeader("Client-Id"); id != "" {
		return id
	}
	return "anonymous"
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if logger == nil {
			return
		}
		status := c.Writer.Status()
		line := "%s %s -> %d (%v)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond)}
		switch {
		case status >= 500:
			logger.ErrorTag("HTTP", line, args...)
		case status >= 400:
			logger.WarnTag("HTTP", line, args...)
		default:
			logger.DebugTag("HTTP", line, args...)
		}
	}
}
