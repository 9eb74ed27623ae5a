// internal/middleware/exclusive.go
package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// Exclusive runs the rest of the chain while holding l, so handlers see the
// marketplace as a single-threaded event loop.
func Exclusive(l sync.Locker) gin.HandlerFunc {
	return func(c *gin.Context) {
		l.Lock()
		defer l.Unlock()
		c.Next()
	}
}
