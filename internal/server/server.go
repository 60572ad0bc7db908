package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/dnd"
	"taskboard/internal/events"
	"taskboard/internal/notify"
)

// Views that own a selection and drag controller.
const (
	ViewBoard = "board"
	ViewList  = "list"
)

// Deps are the stores the HTTP layer drives.
type Deps struct {
	Board  *board.Store
	Users  *auth.Directory
	Inbox  *notify.Inbox
	Bus    *events.Bus
	Tokens *auth.Tokens
}

// Server provides HTTP handlers for the task board backend.
type Server struct {
	engine    *gin.Engine
	board     *board.Store
	users     *auth.Directory
	inbox     *notify.Inbox
	bus       *events.Bus
	tokens    *auth.Tokens
	views     map[string]*dnd.Controller
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	srv := &Server{
		engine: router,
		board:  deps.Board,
		users:  deps.Users,
		inbox:  deps.Inbox,
		bus:    deps.Bus,
		tokens: deps.Tokens,
		views: map[string]*dnd.Controller{
			ViewBoard: dnd.NewController(),
			ViewList:  dnd.NewController(),
		},
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/auth/login", s.handleLogin)
	}

	authed := api.Group("", s.requireAuth())
	{
		authed.POST("/auth/logout", s.handleLogout)
		authed.GET("/auth/me", s.handleMe)

		users := authed.Group("/users")
		{
			users.GET("", s.handleListUsers)
			users.POST("", s.requireAdmin(), s.handleCreateUser)
			users.PATCH(":id", s.handleUpdateUser)
			users.DELETE(":id", s.requireAdmin(), s.handleDeleteUser)
		}

		projects := authed.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.POST(":id/activate", s.handleActivateProject)
		}

		authed.GET("/board", s.handleBoard)
		authed.POST("/archive", s.handleArchive)

		columns := authed.Group("/columns")
		{
			columns.POST("", s.handleCreateColumn)
			columns.PATCH(":id", s.handleRenameColumn)
			columns.DELETE(":id", s.handleDeleteColumn)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.POST("", s.handleCreateTask)
			tasks.GET(":id", s.handleGetTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
			tasks.POST(":id/comments", s.handleAddComment)
			tasks.POST(":id/subtasks", s.handleAddSubtask)
			tasks.POST(":id/subtasks/:subtaskID/toggle", s.handleToggleSubtask)
			tasks.DELETE(":id/subtasks/:subtaskID", s.handleDeleteSubtask)
		}

		views := authed.Group("/views/:view", s.resolveView())
		{
			views.GET("", s.handleViewState)
			views.POST("/select", s.handleSelect)
			views.DELETE("/select", s.handleClearSelection)
			views.POST("/start", s.handleDragStart)
			views.POST("/over", s.handleDragOver)
			views.POST("/end", s.handleDragEnd)
			views.POST("/cancel", s.handleDragCancel)
			views.GET("/preview", s.handleDragPreview)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", s.handleListNotifications)
			notifications.POST("/read-all", s.handleReadAllNotifications)
			notifications.POST(":id/read", s.handleReadNotification)
			notifications.DELETE(":id", s.handleDeleteNotification)
		}

		authed.GET("/events", s.handleEvents)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// respondChanged reports a mutation outcome. Referential misses are not
// errors: they answer 200 with changed=false.
func respondChanged(c *gin.Context, changed bool) {
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
