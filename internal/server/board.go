package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/projection"
)

type columnRequest struct {
	Title string `json:"title"`
}

// handleBoard returns the active project's columns after search and filter.
func (s *Server) handleBoard(c *gin.Context) {
	filter := projection.ParseFilter(c.Query("filter"))
	cols := projection.Project(s.board.Columns(), c.Query("q"), filter)
	respondSuccess(c, http.StatusOK, gin.H{
		"project_id": s.board.ActiveProjectID(),
		"filter":     filter,
		"columns":    cols,
	})
}

// handleArchive moves completed tasks into today's archive column.
func (s *Server) handleArchive(c *gin.Context) {
	moved := s.board.ArchiveCompletedTasks(c.Request.Context())
	respondSuccess(c, http.StatusOK, gin.H{"moved": moved})
}

// handleCreateColumn appends a column to the active project.
func (s *Server) handleCreateColumn(c *gin.Context) {
	var req columnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	col, ok := s.board.AddColumn(c.Request.Context(), title)
	if !ok {
		respondChanged(c, false)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"column": col})
}

// handleRenameColumn changes a column title. Blank titles keep the old one.
func (s *Server) handleRenameColumn(c *gin.Context) {
	var req columnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondChanged(c, s.board.UpdateColumnTitle(c.Request.Context(), c.Param("id"), req.Title))
}

// handleDeleteColumn removes a column and the tasks in it.
func (s *Server) handleDeleteColumn(c *gin.Context) {
	respondChanged(c, s.board.DeleteColumn(c.Request.Context(), c.Param("id")))
}
