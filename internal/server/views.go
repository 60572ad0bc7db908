package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/dnd"
	"taskboard/internal/metrics"
	"taskboard/internal/projection"
)

type taskRef struct {
	TaskID string `json:"task_id" binding:"required"`
}

// handleViewState returns the selection and drag phase of a view.
func (s *Server) handleViewState(c *gin.Context) {
	respondSuccess(c, http.StatusOK, viewController(c).Snapshot())
}

// handleSelect toggles a task in the view's selection.
func (s *Server) handleSelect(c *gin.Context) {
	var req taskRef
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	ctrl := viewController(c)
	ctrl.Toggle(req.TaskID)
	respondSuccess(c, http.StatusOK, ctrl.Snapshot())
}

// handleClearSelection empties the view's selection.
func (s *Server) handleClearSelection(c *gin.Context) {
	ctrl := viewController(c)
	ctrl.ClearSelection()
	respondSuccess(c, http.StatusOK, ctrl.Snapshot())
}

// handleDragStart begins dragging a task.
func (s *Server) handleDragStart(c *gin.Context) {
	var req taskRef
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	ctrl := viewController(c)
	if !ctrl.Start(s.board.Columns(), req.TaskID) {
		respondChanged(c, false)
		return
	}
	respondSuccess(c, http.StatusOK, ctrl.Snapshot())
}

// handleDragOver reports what the pointer hovers.
func (s *Server) handleDragOver(c *gin.Context) {
	var target dnd.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	ctrl := viewController(c)
	ctrl.Over(s.board.Columns(), target)
	respondSuccess(c, http.StatusOK, ctrl.Snapshot())
}

// handleDragEnd drops the dragged tasks and commits the move.
func (s *Server) handleDragEnd(c *gin.Context) {
	var target dnd.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	ctrl := viewController(c)
	view := c.Param("view")

	plan, changed := s.board.Drop(c.Request.Context(), ctrl, target)
	outcome := "noop"
	if changed {
		outcome = "moved"
	}
	metrics.DragCommits.WithLabelValues(view, outcome).Inc()

	payload := gin.H{"changed": changed, "view": ctrl.Snapshot()}
	if changed {
		payload["plan"] = plan
	}
	respondSuccess(c, http.StatusOK, payload)
}

// handleDragCancel abandons the drag and keeps the selection.
func (s *Server) handleDragCancel(c *gin.Context) {
	ctrl := viewController(c)
	ctrl.Cancel()
	metrics.DragCommits.WithLabelValues(c.Param("view"), "cancelled").Inc()
	respondSuccess(c, http.StatusOK, ctrl.Snapshot())
}

// handleDragPreview returns the columns as they would look if the drag
// ended at the hovered position. Canonical state is not touched.
func (s *Server) handleDragPreview(c *gin.Context) {
	preview := viewController(c).Preview(s.board.Columns())
	filter := projection.ParseFilter(c.Query("filter"))
	respondSuccess(c, http.StatusOK, gin.H{
		"filter":  filter,
		"columns": projection.Project(preview, c.Query("q"), filter),
	})
}
