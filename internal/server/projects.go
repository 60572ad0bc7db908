package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type projectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

// handleListProjects returns all projects and the active selection.
func (s *Server) handleListProjects(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{
		"projects":  s.board.Projects(),
		"active_id": s.board.ActiveProjectID(),
	})
}

// handleCreateProject creates a project and makes it active.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	project := s.board.AddProject(c.Request.Context(), actor(c), name, strings.TrimSpace(req.Description), req.Members)
	respondSuccess(c, http.StatusCreated, gin.H{"project": project})
}

// handleDeleteProject removes a project with all of its tasks.
func (s *Server) handleDeleteProject(c *gin.Context) {
	respondChanged(c, s.board.DeleteProject(c.Request.Context(), c.Param("id")))
}

// handleActivateProject switches the active project.
func (s *Server) handleActivateProject(c *gin.Context) {
	respondChanged(c, s.board.SetActiveProject(c.Request.Context(), c.Param("id")))
}
