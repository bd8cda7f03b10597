package health

import (
	"net/http"

	"statuspulse/scheduler"

	"github.com/gin-gonic/gin"
)

// ModeReporter is satisfied by the scheduler; it reports how the recurring
// jobs are being driven.
type ModeReporter interface {
	Mode() scheduler.Mode
}

func GetHealth(mode ModeReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  http.StatusOK,
			"message": "ok",
		}
		if mode != nil {
			body["scheduler"] = string(mode.Mode())
		}
		c.JSON(http.StatusOK, body)
	}
}
