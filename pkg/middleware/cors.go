package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS applies the origin whitelist. A "*" entry allows any origin.
// Browsers sending a disallowed Origin get 403; requests without an Origin
// header (curl, server-to-server) pass through untouched.
func CORS(whitelist []string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:   whitelist,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Accept", "Authorization", "Content-Type", "X-Auth-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Total-Count", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
	})
	return func(ctx *gin.Context) {
		if ctx.GetHeader("Origin") == "" {
			ctx.Next()
			return
		}
		if !c.OriginAllowed(ctx.Request) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not allowed by CORS"})
			return
		}
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
