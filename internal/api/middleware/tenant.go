package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/repository"
	"github.com/sayamjn/rely-gate-sub002/pkg/response"
)

// TenantActive 租户状态中间件。
// Token 中的 tenant_id 声明只证明签发时的归属，租户可能在 Token
// 有效期内被停用；每个业务请求在此处二次确认租户仍然在线。
// 需置于 JWTAuth 之后。
func TenantActive(repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		tenant, err := repo.Tenant.GetByID(c.Request.Context(), tenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Forbidden(c, 10005, "租户不存在")
			} else {
				response.InternalError(c)
			}
			c.Abort()
			return
		}
		if !tenant.IsActive {
			response.Forbidden(c, 10005, "租户已停用")
			c.Abort()
			return
		}

		c.Next()
	}
}
