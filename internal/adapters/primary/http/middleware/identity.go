package middleware

import "github.com/gin-gonic/gin"

const (
	headerUsername     = "X-Username"
	ContextKeyUsername = "username"
)

// Identity records the caller's username, set by the authenticating proxy in
// front of the registry. Requests without one act as defaultOwner.
func Identity(defaultOwner string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(headerUsername)
		if username == "" {
			username = defaultOwner
		}
		c.Set(ContextKeyUsername, username)
		c.Next()
	}
}
