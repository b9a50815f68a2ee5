package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// serverError logs the cause and answers with the generic 500 body.
// Persistence details never reach the client.
func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
}

// idParam parses a numeric path parameter; responds 400 on garbage.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid " + name})
		return 0, false
	}
	return id, true
}
