package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/render"
)

type createTaskRequest struct {
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Priority        models.Priority      `json:"priority"`
	ColumnID        string               `json:"column_id" binding:"required"`
	Status          *models.Status       `json:"status"`
	AssigneeID      *string              `json:"assignee_id"`
	CollaboratorIDs []string             `json:"collaborator_ids"`
	DueDate         *string              `json:"due_date"`
	Tags            []string             `json:"tags"`
	Dependencies    []string             `json:"dependencies"`
	TimeEstimate    *models.TimeEstimate `json:"time_estimate"`
	Projects        []string             `json:"projects"`
}

type textRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

type renderedComment struct {
	models.Comment
	HTML string `json:"html"`
}

// handleCreateTask appends a task to a column of the active project.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if err := validateEnums(req.Status, req.Priority); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	overrides := models.TaskOverrides{
		Status:       req.Status,
		DueDate:      req.DueDate,
		Tags:         req.Tags,
		Dependencies: req.Dependencies,
		TimeEstimate: req.TimeEstimate,
		Projects:     req.Projects,
	}
	if req.AssigneeID != nil {
		ref, ok := s.userRef(*req.AssigneeID)
		if !ok {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("unknown assignee %q", *req.AssigneeID))
			return
		}
		overrides.Assignee = &ref
	}
	if req.CollaboratorIDs != nil {
		overrides.Collaborators = []models.UserRef{}
		for _, id := range req.CollaboratorIDs {
			if ref, ok := s.userRef(id); ok {
				overrides.Collaborators = append(overrides.Collaborators, ref)
			}
		}
	}

	task, ok := s.board.AddTask(c.Request.Context(), actor(c), req.Title, req.Description, req.Priority, req.ColumnID, overrides)
	if !ok {
		respondChanged(c, false)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleGetTask returns one task with its comments rendered as HTML.
func (s *Server) handleGetTask(c *gin.Context) {
	task, ok := s.board.Task(c.Param("id"))
	if !ok {
		s.respondError(c, http.StatusNotFound, errors.New("task not found"))
		return
	}
	comments := make([]renderedComment, len(task.Comments))
	for i, cm := range task.Comments {
		comments[i] = renderedComment{Comment: cm, HTML: render.Markdown(cm.Content)}
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task, "comments": comments})
}

// handleUpdateTask replaces a task's fields in place. Column changes go
// through the drag endpoints, not here.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var task models.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	task.ID = c.Param("id")
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}
	if err := validateEnums(&task.Status, task.Priority); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if !s.board.UpdateTask(c.Request.Context(), actor(c), task) {
		respondChanged(c, false)
		return
	}
	updated, _ := s.board.Task(task.ID)
	respondSuccess(c, http.StatusOK, gin.H{"task": updated})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	respondChanged(c, s.board.DeleteTask(c.Request.Context(), c.Param("id")))
}

// handleAddComment appends a comment by the acting user.
func (s *Server) handleAddComment(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("content is required"))
		return
	}

	comment, ok := s.board.AddComment(c.Request.Context(), actor(c), c.Param("id"), req.Content)
	if !ok {
		respondChanged(c, false)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{
		"comment": renderedComment{Comment: comment, HTML: render.Markdown(comment.Content)},
	})
}

// handleAddSubtask appends a checklist entry.
func (s *Server) handleAddSubtask(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	st, ok := s.board.AddSubtask(c.Request.Context(), c.Param("id"), req.Title)
	if !ok {
		respondChanged(c, false)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"subtask": st})
}

// handleToggleSubtask flips a checklist entry.
func (s *Server) handleToggleSubtask(c *gin.Context) {
	respondChanged(c, s.board.ToggleSubtask(c.Request.Context(), c.Param("id"), c.Param("subtaskID")))
}

// handleDeleteSubtask removes a checklist entry.
func (s *Server) handleDeleteSubtask(c *gin.Context) {
	respondChanged(c, s.board.DeleteSubtask(c.Request.Context(), c.Param("id"), c.Param("subtaskID")))
}

func (s *Server) userRef(id string) (models.UserRef, bool) {
	u, ok := s.users.User(id)
	if !ok {
		return models.UserRef{}, false
	}
	return u.Ref(), true
}

func validateEnums(status *models.Status, priority models.Priority) error {
	if status != nil {
		if *status == "" {
			*status = models.StatusTodo
		}
		if _, ok := models.ValidTaskStatuses[*status]; !ok {
			return fmt.Errorf("invalid status %q", *status)
		}
	}
	if _, ok := models.ValidPriorities[priority]; !ok {
		return fmt.Errorf("invalid priority %q", priority)
	}
	return nil
}
