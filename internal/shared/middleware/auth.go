package middleware

import (
	"strings"

	"pricebook-backend/internal/shared/response"
	"pricebook-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userID"
	ContextTenantID = "tenantID"
)

// TenantAuth - Middleware xác thực JWT và gắn tenant vào context
func TenantAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		// 3. Verify access token (phải có tenant_id)
		claims, err := manager.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		// 4. Set user + tenant vào context
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextTenantID, claims.TenantID)

		c.Next()
	}
}

// TenantID đọc tenant đã được TenantAuth gắn vào context
func TenantID(c *gin.Context) (string, bool) {
	v := c.GetString(ContextTenantID)
	return v, v != ""
}
