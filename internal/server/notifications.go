package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleListNotifications returns the acting user's inbox, newest first.
func (s *Server) handleListNotifications(c *gin.Context) {
	id := currentUser(c).ID
	respondSuccess(c, http.StatusOK, gin.H{
		"notifications": s.inbox.ForUser(id),
		"unread":        s.inbox.UnreadCount(id),
	})
}

// handleReadNotification marks one notification read.
func (s *Server) handleReadNotification(c *gin.Context) {
	s.inbox.MarkRead(c.Request.Context(), c.Param("id"))
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleReadAllNotifications marks the acting user's inbox read.
func (s *Server) handleReadAllNotifications(c *gin.Context) {
	s.inbox.MarkAllRead(c.Request.Context(), currentUser(c).ID)
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleDeleteNotification removes a notification.
func (s *Server) handleDeleteNotification(c *gin.Context) {
	s.inbox.Delete(c.Request.Context(), c.Param("id"))
	respondSuccess(c, http.StatusNoContent, nil)
}
