package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/remoteconfig"
)

// ContextUserKey holds the token subject of an authenticated request.
const ContextUserKey = "user"

// AuthGate enforces bearer tokens while remote config has auth switched on.
// A missing token is 401, an invalid or expired one 403.
func AuthGate(remote remoteconfig.Provider, secret []byte, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		v, err := remote.Get(ctx)
		if err != nil {
			log.Error(ctx, "Error fetching remote config: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "remote config unavailable"})
			return
		}
		if !v.Auth {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, MessageOnly{Message: "No token provided"})
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		if len(secret) == 0 {
			log.Error(ctx, "Auth is enabled but no JWT secret is configured")
			c.AbortWithStatusJSON(http.StatusForbidden, MessageOnly{Message: "Invalid or expired token"})
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			log.Debug(ctx, "Rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusForbidden, MessageOnly{Message: "Invalid or expired token"})
			return
		}

		c.Set(ContextUserKey, claims.Subject)
		c.Next()
	}
}

// CORS answers preflight requests and tags responses for the allowed origins. "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
