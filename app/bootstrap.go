// app/bootstrap.go
package app

import (
	"context"

	"magacin_backend/config"
	"magacin_backend/db"
	"magacin_backend/identity"
	"magacin_backend/models"
	"magacin_backend/policy"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin 启动时种第一个管理员：没有任何 MAGACIN_ADMIN 档案
// 且配置了引导账号，就从名字派生邮箱/个人码建 account + 档案。
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	log := config.GetLogger()
	if cfg.BootstrapName == "" || cfg.BootstrapPassword == "" {
		return
	}

	n, err := repo.CountAdmins(ctx, string(policy.RoleAdmin))
	if err != nil {
		log.Warnf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return // 已经有管理员，跳过
	}

	email := identity.DeriveEmail(cfg.BootstrapName, cfg.EmailDomain)
	hash, err := identity.HashPassword(cfg.BootstrapPassword)
	if err != nil {
		log.Warnf("bootstrap: hash password: %v", err)
		return
	}

	if _, err := repo.FindAccountByEmail(ctx, email); err != nil {
		acc := &models.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash}
		if err := repo.CreateAccount(ctx, acc); err != nil {
			log.Warnf("bootstrap: create account: %v", err)
			return
		}
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         cfg.BootstrapName,
		Role:         string(policy.RoleAdmin),
		PersonalCode: identity.PersonalCode(cfg.BootstrapName),
		Email:        email,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Warnf("bootstrap: create admin profile: %v", err)
		return
	}
	log.Infof("[BOOTSTRAP] created first admin %s (%s)", cfg.BootstrapName, email)
}
