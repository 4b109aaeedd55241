package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger with request details
func LOG(c *gin.Context) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"module": "crowdfund.api",
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"client": c.ClientIP(),
	})
}
