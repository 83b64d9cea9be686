package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"candy-bianca-backend/config"
	"candy-bianca-backend/internal/control"
	"candy-bianca-backend/internal/mw"
	"candy-bianca-backend/internal/store"
	"candy-bianca-backend/internal/timer"
	"candy-bianca-backend/internal/ws"
)

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	Registry *control.Registry
	Store    store.Store
	WebPush  *webpush.Options // nil disables the VAPID endpoint
	Timers   map[string]*timer.Tracker
	Hub      *ws.Hub           // nil disables /api/ws
	Limiter  *mw.IPRateLimiter // created from the server config when nil
}

const devicesPath = "/api/devices"

// NewRouter creates and configures a new Gin router.
func NewRouter(deps Deps, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	handler := NewHandler(deps.Registry, deps.Store, deps.WebPush, deps.Timers)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	}
	responseCache := mw.NewResponseCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	caching := responseCache.Middleware()
	invalidate := responseCache.InvalidateOnWrite(devicesPath)

	api := r.Group("/api")
	if deps.Hub != nil {
		// Long-lived connection, outside the rate limiter.
		api.GET("/ws", func(c *gin.Context) {
			ws.ServeWs(deps.Hub, c.Writer, c.Request)
		})
	}

	limited := api.Group("")
	limited.Use(limiter.Middleware())
	{
		limited.GET("/programs", caching, handler.GetPrograms)
		limited.GET("/devices", caching, handler.GetDevices)

		device := limited.Group("/devices/:id")
		device.GET("/status", caching, handler.GetDeviceStatus)
		device.GET("/sensors", caching, handler.GetSensors)
		device.GET("/raw", caching, handler.GetRaw)
		device.GET("/pending", handler.GetPending)
		device.PUT("/pending", invalidate, handler.PutPending)
		device.POST("/start", invalidate, handler.PostStart)
		device.POST("/stop", invalidate, handler.PostStop)
		device.POST("/refresh", invalidate, handler.PostRefresh)
		device.PUT("/test_mode", invalidate, handler.PutTestMode)
		device.GET("/timer", handler.GetTimer)
		device.GET("/history", handler.GetHistory)
		device.GET("/actions", handler.GetActions)

		limited.GET("/subscriptions", handler.GetSubscription)
		limited.PUT("/subscriptions", handler.PutSubscription)
		limited.DELETE("/subscriptions", handler.DeleteSubscription)
		limited.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
