package app

import (
	"errors"
	"net/http"

	"magacin_backend/db"
	"magacin_backend/policy"
	"magacin_backend/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const SessionCookie = "mag_session"

// context key
const (
	CtxAccountID   = "accountID"
	CtxEmail       = "email"
	CtxRole        = "role"
	CtxPermissions = "permissions"
	CtxProfileID   = "profileID"
)

// AuthRequired 校验会话，然后每个请求都按 email 重新解析档案 → 角色 → 权限。
// 档案不存在不算失败：降级成未知角色（只读），会话照常可用。
func AuthRequired(sessions *session.Store, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(SessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		sess, err := sessions.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		c.Set(CtxAccountID, sess.AccountID)
		c.Set(CtxEmail, sess.Email)

		role := policy.RoleUnknown
		profile, err := repo.FindUserByEmail(c.Request.Context(), sess.Email)
		switch {
		case err == nil:
			role = policy.Role(profile.Role)
			c.Set(CtxProfileID, profile.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 有登录身份没有档案：未知角色
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": err.Error()})
			return
		}

		c.Set(CtxRole, role)
		c.Set(CtxPermissions, policy.For(role))
		c.Next()
	}
}

// PermissionsOf 取中间件放进去的权限；取不到按未知角色算。
func PermissionsOf(c *gin.Context) policy.Permissions {
	if v, ok := c.Get(CtxPermissions); ok {
		if p, ok := v.(policy.Permissions); ok {
			return p
		}
	}
	return policy.For(policy.RoleUnknown)
}

func RoleOf(c *gin.Context) policy.Role {
	if v, ok := c.Get(CtxRole); ok {
		if r, ok := v.(policy.Role); ok {
			return r
		}
	}
	return policy.RoleUnknown
}

// RequirePermission 路由级别的策略闸门 —— 不只是前端藏按钮。
func RequirePermission(allowed func(policy.Permissions) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(PermissionsOf(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// AdminOnly = RequirePermission(ManageUsers)，语义上就是管理员。
func AdminOnly() gin.HandlerFunc {
	return RequirePermission(func(p policy.Permissions) bool { return p.ManageUsers })
}
