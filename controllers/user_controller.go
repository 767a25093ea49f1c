package controllers

import (
	"net/http"

	"magacin_backend/app"
	"magacin_backend/feed"
	"magacin_backend/identity"
	"magacin_backend/models"
	"magacin_backend/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users —— 管理员专用的完整列表（按名字升序）
func (uc *UserController) List(c *gin.Context) {
	users, err := uc.Repo.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"users": users})
}

// pickerView 下拉列表只吐 id+name，不带邮箱/个人码。
type pickerView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GET /api/users/pickers?role=REZERVACIJA
// 所有登录用户可用：预订/提货表单的用户下拉。role 只做过滤，不校验权限。
func (uc *UserController) Pickers(c *gin.Context) {
	role := c.Query("role")
	if !policy.Known(policy.Role(role)) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown role"})
		return
	}
	users, err := uc.Repo.ListUsersByRole(c.Request.Context(), role)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	out := make([]pickerView, 0, len(users))
	for _, u := range users {
		out = append(out, pickerView{ID: u.ID, Name: u.Name})
	}
	c.JSON(http.StatusOK, app.H{"users": out})
}

// GET /api/users/:id
func (uc *UserController) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	u, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

type createUserRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required"`
}

// POST /api/users —— 管理员直接建档案（邮箱/个人码照登录规则派生）
func (uc *UserController) Create(c *gin.Context) {
	var in createUserRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !policy.Known(policy.Role(in.Role)) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown role"})
		return
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Role:         in.Role,
		PersonalCode: identity.PersonalCode(in.Name),
		Email:        identity.DeriveEmail(in.Name, uc.Cfg.EmailDomain),
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	uc.publish(c.Request.Context(), models.UserTable, feed.ActionInsert, u.ID)
	c.JSON(http.StatusCreated, u)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// PUT /api/users/:id/role —— 改角色的唯一入口，管理员专用
func (uc *UserController) UpdateRole(c *gin.Context) {
	id := c.Param("id")
	var in updateRoleRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !policy.Known(policy.Role(in.Role)) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown role"})
		return
	}

	u, err := uc.Repo.UpdateUserRole(c.Request.Context(), id, in.Role)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	uc.publish(c.Request.Context(), models.UserTable, feed.ActionUpdate, id)
	c.JSON(http.StatusOK, u)
}

// DELETE /api/users/:id
func (uc *UserController) Delete(c *gin.Context) {
	id := c.Param("id")

	// 不允许删自己，避免把管理端锁死
	if v, ok := c.Get(app.CtxProfileID); ok {
		if pid, _ := v.(string); pid == id {
			c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
			return
		}
	}

	target, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}

	if err := uc.Repo.DeleteUser(c.Request.Context(), id); err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}
	// 档案没了，该邮箱的会话全部吊销（剩下的登录身份会降级成未知角色）
	_ = uc.Sess.RevokeAllForEmail(c.Request.Context(), target.Email)
	uc.publish(c.Request.Context(), models.UserTable, feed.ActionDelete, id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
