package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/auth"
	"taskboard/internal/models"
)

type loginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

type createUserRequest struct {
	Email    string      `json:"email" binding:"required"`
	Name     string      `json:"name" binding:"required"`
	Role     models.Role `json:"role"`
	Password string      `json:"password"`
}

// publicUser hides the stored credential hash.
func publicUser(u models.User) models.User {
	u.Credential = ""
	return u
}

// handleLogin signs a user in and returns an API token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.users.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		s.respondError(c, http.StatusUnauthorized, err)
		return
	}

	payload := gin.H{"user": publicUser(user)}
	if s.tokens != nil {
		token, err := s.tokens.IssueToken(user)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return
		}
		payload["token"] = token
	}
	respondSuccess(c, http.StatusOK, payload)
}

// handleLogout ends the session.
func (s *Server) handleLogout(c *gin.Context) {
	s.users.Logout(c.Request.Context())
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleMe returns the acting user.
func (s *Server) handleMe(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"user": publicUser(currentUser(c))})
}

// handleListUsers returns the directory.
func (s *Server) handleListUsers(c *gin.Context) {
	users := s.users.Users()
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = publicUser(u)
	}
	respondSuccess(c, http.StatusOK, gin.H{"users": out})
}

// handleCreateUser adds a user; admins only.
func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.users.AddUser(c.Request.Context(), req.Email, req.Name, req.Role, req.Password)
	if err != nil {
		s.respondError(c, userErrorStatus(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"user": publicUser(user)})
}

// handleUpdateUser edits a user. Members may only edit themselves and may
// not change roles. Task references to the user are refreshed afterwards.
func (s *Server) handleUpdateUser(c *gin.Context) {
	id := c.Param("id")
	me := currentUser(c)
	if !me.IsAdmin() && me.ID != id {
		s.respondError(c, http.StatusForbidden, errors.New("cannot edit other users"))
		return
	}

	var req auth.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if !me.IsAdmin() {
		req.Role = nil
	}

	user, err := s.users.UpdateUser(c.Request.Context(), id, req)
	if errors.Is(err, auth.ErrUserNotFound) {
		respondChanged(c, false)
		return
	}
	if err != nil {
		s.respondError(c, userErrorStatus(err), err)
		return
	}
	s.board.RefreshUserRefs(c.Request.Context(), user)
	respondSuccess(c, http.StatusOK, gin.H{"user": publicUser(user)})
}

// handleDeleteUser removes a user; admins only.
func (s *Server) handleDeleteUser(c *gin.Context) {
	respondChanged(c, s.users.RemoveUser(c.Request.Context(), c.Param("id")))
}

func userErrorStatus(err error) int {
	switch {
	case auth.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
