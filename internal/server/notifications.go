package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DispatchNotifications drains the pending outbox. Exposed as an ops
// endpoint so a missed post-commit dispatch can be retried by hand.
func (s *Server) DispatchNotifications(c *gin.Context) {
	resp, err := s.notificationSvc.Dispatch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
