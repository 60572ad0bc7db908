package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/dnd"
	"taskboard/internal/models"
)

const (
	ctxUser = "user"
	ctxView = "view"
)

// requestLogger records one slog line per API request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if !strings.HasPrefix(c.Request.URL.Path, "/api") {
			return
		}
		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// requireAuth resolves the acting user from a bearer token. Browsers opening
// the event stream pass the token as the token query parameter.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" || s.tokens == nil {
			s.respondError(c, http.StatusUnauthorized, errors.New("not signed in"))
			c.Abort()
			return
		}
		claims, err := s.tokens.ParseToken(raw)
		if err != nil {
			s.respondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		user, ok := s.users.User(claims.Subject)
		if !ok {
			s.respondError(c, http.StatusUnauthorized, errors.New("unknown user"))
			c.Abort()
			return
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

// requireAdmin rejects members.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin() {
			s.respondError(c, http.StatusForbidden, errors.New("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// resolveView picks the controller named by the :view parameter.
func (s *Server) resolveView() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctrl, ok := s.views[c.Param("view")]
		if !ok {
			s.respondError(c, http.StatusNotFound, errors.New("unknown view"))
			c.Abort()
			return
		}
		c.Set(ctxView, ctrl)
		c.Next()
	}
}

func currentUser(c *gin.Context) models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(models.User); ok {
			return u
		}
	}
	return models.User{}
}

func actor(c *gin.Context) models.UserRef {
	return currentUser(c).Ref()
}

func viewController(c *gin.Context) *dnd.Controller {
	return c.MustGet(ctxView).(*dnd.Controller)
}
