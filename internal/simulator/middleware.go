package simulator

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// cors mirrors the firmware's permissive CORS headers and answers
// preflight requests directly.
func cors(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}

// lossyNetwork delays and randomly fails device API calls.
func (s *Server) lossyNetwork(c *gin.Context) {
	if d := s.opts.Latency; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-c.Request.Context().Done():
			t.Stop()
			c.Abort()
			return
		}
	}
	if s.opts.FailureRatio > 0 && s.opts.Rand() < s.opts.FailureRatio {
		s.log.Debugw("simulated failure", "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": statusError, "message": msgSimulatedFault})
		return
	}
	c.Next()
}

func (s *Server) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debugw("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}
