package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/domain"
	"storefront-api/internal/metrics"
	"storefront-api/internal/ratelimit"
)

const (
	ctxRequestID   = "req_id"
	ctxLogger      = "logger"
	ctxCurrentUser = "current_user"

	requestIDHeader = "X-Request-ID"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := log.WithFields(logrus.Fields{
			"req_id":     c.GetString(ctxRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remoteaddr": c.ClientIP(),
		})
		c.Set(ctxLogger, entry)

		start := time.Now()
		c.Next()

		entry.WithFields(logrus.Fields{
			"statuscode": c.Writer.Status(),
			"bytes":      c.Writer.Size(),
			"since":      time.Since(start).Milliseconds(),
		}).Info("completed")
	}
}

func loggerFrom(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func rateLimit(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			fail(c, http.StatusTooManyRequests, "Too many requests from this IP")
			return
		}
		c.Next()
	}
}

// requireAuth resolves the bearer token to a user and stores it on the context.
func requireAuth(users userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			fail(c, http.StatusUnauthorized, "you are not logged in")
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(ctxCurrentUser, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxCurrentUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// resolveUserID returns the authenticated user's id. A body userId naming
// someone else is refused.
func resolveUserID(c *gin.Context, bodyUserID string) (string, bool) {
	u := currentUser(c)
	if u == nil {
		fail(c, http.StatusUnauthorized, "you are not logged in")
		return "", false
	}
	bodyUserID = strings.TrimSpace(bodyUserID)
	if bodyUserID != "" && bodyUserID != u.ID {
		fail(c, http.StatusForbidden, "you can only act on your own account")
		return "", false
	}
	return u.ID, true
}
