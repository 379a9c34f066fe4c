package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"maintenance-logbook-backend/internal/attachment"
	"maintenance-logbook-backend/internal/auth"
	"maintenance-logbook-backend/internal/mw"
)

// RouterConfig holds the tunables for NewRouter.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	UploadDir       string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, tokens *auth.Tokens, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 8 << 20

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Cache: short TTL so escalation flags stay fresh; any mutation flushes it.
	responses := mw.NewResponseCache(cfg.CacheTTL)
	caching := mw.Cache(responses, cfg.CacheTTL)

	r.GET("/healthz", h.Healthz)
	if cfg.UploadDir != "" {
		r.Static("/"+attachment.URLPrefix, cfg.UploadDir)
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/users/register", h.Register)
		api.POST("/users/login", h.Login)

		authed := api.Group("")
		authed.Use(mw.Authenticate(tokens), mw.Invalidate(responses))
		{
			authed.GET("/users/technicians", h.ListTechnicians)
			authed.POST("/users/technicians", h.AddTechnician)

			authed.GET("/complaints", caching, h.ListComplaints)
			authed.POST("/complaints", h.CreateComplaint)
			authed.GET("/complaints/:id", h.GetComplaint)
			authed.POST("/complaints/:id/assign", h.AssignTechnician)
			authed.POST("/complaints/:id/updates", h.PostUpdate)

			authed.GET("/analytics", caching, h.GetAnalytics)
		}
	}

	return r
}
