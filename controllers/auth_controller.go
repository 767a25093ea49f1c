package controllers

import (
	"errors"
	"net/http"

	"magacin_backend/app"
	"magacin_backend/identity"
	"magacin_backend/models"
	"magacin_backend/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type loginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// POST /auth/login
// 首次使用某个派生邮箱：建 account + 档案（角色取表单值）。
// 已有 account：校验密码；档案缺了就补一条，角色绝不跟着登录改
// （改角色走管理员的 PUT /api/users/:id/role）。
func (ac *AuthController) Login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !policy.Known(policy.Role(in.Role)) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown role"})
		return
	}

	ctx := c.Request.Context()
	email := identity.DeriveEmail(in.Name, ac.Cfg.EmailDomain)

	acc, err := ac.Repo.FindAccountByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 注册
		hash, herr := identity.HashPassword(in.Password)
		if herr != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": herr.Error()})
			return
		}
		acc = &models.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash}
		if err := ac.Repo.CreateAccount(ctx, acc); err != nil {
			c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
			return
		}
	case err != nil:
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	default:
		if !identity.CheckPassword(acc.PasswordHash, in.Password) {
			c.JSON(http.StatusUnauthorized, app.H{"error": "invalid credentials"})
			return
		}
	}

	// 没档案就补一条；有档案的角色不动
	profile, err := ac.Repo.FindUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = &models.User{
			ID:           uuid.NewString(),
			Name:         in.Name,
			Role:         in.Role,
			PersonalCode: identity.PersonalCode(in.Name),
			Email:        email,
		}
		if cerr := ac.Repo.CreateUser(ctx, profile); cerr != nil {
			c.JSON(persistenceStatus(cerr), app.H{"error": cerr.Error()})
			return
		}
	} else if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}

	if err := ac.issueSession(ctx, c.Writer, acc.ID, email, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	role := policy.Role(profile.Role)
	c.JSON(http.StatusOK, app.H{
		"user":        profile,
		"role":        role,
		"permissions": policy.For(role),
	})
}

// POST /auth/logout：删 redis 会话，Cookie 置空
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.SessionCookie); err == nil && ck.Value != "" {
		_ = ac.Sess.Delete(c.Request.Context(), ck.Value)
	}
	ac.setSessionCookie(c.Writer, "", -1)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /auth/whoami：档案 + 角色 + 权限。档案被删了也返回 200，
// 角色为空、权限只读 —— 这是降级态不是错误。
func (ac *AuthController) WhoAmI(c *gin.Context) {
	email, _ := c.Get(app.CtxEmail)
	role := app.RoleOf(c)

	var profile *models.User
	if v, ok := c.Get(app.CtxProfileID); ok {
		if pid, _ := v.(string); pid != "" {
			profile, _ = ac.Repo.FindUserByID(c.Request.Context(), pid)
		}
	}

	c.JSON(http.StatusOK, app.H{
		"email":       email,
		"user":        profile, // 可能是 null（ProfileMissing）
		"role":        role,
		"permissions": policy.For(role),
	})
}
