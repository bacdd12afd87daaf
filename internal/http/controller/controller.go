package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller handles general HTTP requests.
type Controller struct {
	health http.Handler
}

// New creates a new Controller serving health reports from the given handler.
func New(health http.Handler) *Controller {
	return &Controller{
		health: health,
	}
}

// Ping handles the HTTP GET request for liveness checks.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Health reports the status of the service dependencies.
func (con *Controller) Health(c *gin.Context) {
	con.health.ServeHTTP(c.Writer, c.Request)
}
