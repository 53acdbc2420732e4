package auth

import (
	"github.com/gin-gonic/gin"
)

// CtxAdmin is set on requests that passed the admin key check.
const CtxAdmin = "admin_authenticated"

// IsAdmin reports whether the request was authenticated as an editor.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(CtxAdmin)
}
