package middleware

import "github.com/gin-gonic/gin"

// ClaimsKey and SubjectKey are the gin context keys set by AuthMiddleware.
const (
	ClaimsKey  = "claims"
	SubjectKey = "sub"
)

// clientKey identifies the caller for rate limiting: the authenticated
// subject when present, the client IP otherwise.
func clientKey(c *gin.Context) string {
	if sub := c.GetString(SubjectKey); sub != "" {
		return "sub:" + sub
	}
	if v, ok := c.Get(ClaimsKey); ok {
		if cm, ok := v.(map[string]interface{}); ok {
			if sub, ok := cm["sub"].(string); ok && sub != "" {
				return "sub:" + sub
			}
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
