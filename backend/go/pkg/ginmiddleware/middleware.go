package ginmiddleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/circuitbreaker"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit rejects requests over the limit of the client's IP with 429.
// If the limiter itself fails the request is let through.
func RateLimit(limiter ratelimiter.KeyedLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(models.NewErrorInfo("ratelimit_error", err)).Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}

// CircuitBreak counts responses with status >= 500 as failures. While the breaker
// is open every request is answered with 503 without reaching the handlers.
func CircuitBreak(breaker circuitbreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := breaker.Execute(func() (interface{}, error) {
			c.Next()
			if status := c.Writer.Status(); status >= http.StatusInternalServerError {
				return nil, fmt.Errorf("server error: status code %d", status)
			}
			return nil, nil
		})
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service Unavailable: Circuit Breaker is open"})
		}
	}
}

// RequestLogger logs one line per request with its status and latency.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		info := models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Status:     c.Writer.Status(),
			LatencyMs:  time.Since(start).Milliseconds(),
		}
		l := log.WithRequest(info)
		switch {
		case info.Status >= http.StatusInternalServerError:
			l.Error("request failed")
		case info.Status >= http.StatusBadRequest:
			l.Warn("request rejected")
		default:
			l.Info("request handled")
		}
	}
}

// FromConfig builds the configured middleware chain in the order it should be used.
// rdb may be nil unless the Redis rate limiter is selected.
func FromConfig(cfg config.MiddlewareConfig, rdb *redis.Client, log *logger.Logger) ([]gin.HandlerFunc, error) {
	chain := []gin.HandlerFunc{gin.Recovery(), RequestLogger(log)}

	if cfg.RateLimiter.Enabled {
		limiter, err := ratelimiter.New(cfg.RateLimiter, rdb)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		log.Info("enabling rate limiter middleware with algorithm " + cfg.RateLimiter.Algorithm)
		chain = append(chain, RateLimit(limiter, log))
	}

	if cfg.CircuitBreaker.Enabled {
		breaker, err := NewBreaker(cfg.CircuitBreaker, log, "http")
		if err != nil {
			return nil, err
		}
		log.Info("enabling circuit breaker middleware")
		chain = append(chain, CircuitBreak(breaker))
	}
	return chain, nil
}

// NewBreaker builds a breaker from config that logs its state changes under name.
func NewBreaker(cfg config.CircuitBreakerConfig, log *logger.Logger, name string) (circuitbreaker.CircuitBreaker, error) {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid circuit breaker timeout duration: %w", err)
	}
	return circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, timeout,
		circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
			log.WithPayload(map[string]interface{}{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		}),
	), nil
}
