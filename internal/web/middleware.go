package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/releaseplan/internal/contract"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		e := log.Info()
		if status >= http.StatusInternalServerError {
			e = log.Warn()
		}
		e.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func bearerAuth(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, contract.ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}
