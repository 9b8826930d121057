package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"boiler-status-backend/internal/mw"
	"boiler-status-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s *store.Store, webpushOptions *webpush.Options, rateLimitPerSec float64, cacheTTL time.Duration) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(rateLimitPerSec), 5)

	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/controller", caching, handler.GetController)
		api.GET("/events", caching, handler.GetEvents)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
