package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-admin-api/pkg/response"
)

const contextFailureKey = "failureRenderer"

// FailureRenderer writes an error response body.
type FailureRenderer func(c *gin.Context, err error)

// FailWith makes the auth middleware that runs after it render rejections with
// render instead of the standard envelope.
func FailWith(render FailureRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextFailureKey, render)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	render := FailureRenderer(response.Error)
	if value, ok := c.Get(contextFailureKey); ok {
		if custom, ok := value.(FailureRenderer); ok && custom != nil {
			render = custom
		}
	}
	render(c, err)
	c.Abort()
}
