package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey       = "userId"
	requestIDKey    = "requestId"
	requestIDHeader = "X-Request-ID"
)

// requireUser rejects requests without a valid bearer token before any handler
// runs. With allowQuery set, a ?token= parameter is accepted when the header is absent.
func (h *Handler) requireUser(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: msgNoToken})
			return
		}

		uid, err := h.services.ParseToken(token)
		if err != nil {
			if h.log != nil {
				h.log.Debugw("auth_token_rejected", "request_id", c.GetString(requestIDKey), "err", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: msgInvalidToken})
			return
		}

		// store in Gin context
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// userID returns the id stored by requireUser.
func userID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func (h *Handler) requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func (h *Handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
		"request_id", c.GetString(requestIDKey),
	)
}

// cors adds Access-Control headers for allowed origins and short-circuits OPTIONS requests.
func (h *Handler) cors(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin != "" {
		if allowed, wildcard := originAllowed(h.origins, origin); allowed {
			if wildcard {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Header("Access-Control-Expose-Headers", requestIDHeader)
		}
	}

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// originAllowed reports whether origin may call the API and whether every origin is allowed.
func originAllowed(allowed []string, origin string) (bool, bool) {
	if len(allowed) == 0 {
		return true, true
	}
	for _, a := range allowed {
		if a == "*" {
			return true, true
		}
		if strings.EqualFold(a, origin) {
			return true, false
		}
	}
	return false, false
}
