package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
)

func SecureHeaders(production bool) gin.HandlerFunc {
	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:         31536000,
		IsDevelopment:      !production,
	})

	return func(ctx *gin.Context) {
		if err := sec.Process(ctx.Writer, ctx.Request); err != nil {
			err = fmt.Errorf("middleware.SecureHeaders -> sec.Process -> %w", err)
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		// Process may have answered with a redirect.
		if status := ctx.Writer.Status(); status >= http.StatusMultipleChoices && status < http.StatusBadRequest {
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}
