package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
)

// RateLimit allows requests per window for every client IP.
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limit := httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(http.ResponseWriter, *http.Request) {}),
	)

	return func(ctx *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			ctx.Request = r
			ctx.Next()
		})
		limit(next).ServeHTTP(ctx.Writer, ctx.Request)

		if !passed {
			response.RenderErr(ctx, response.ErrTooManyRequests())
		}
	}
}
