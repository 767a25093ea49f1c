package db

import (
	"context"
	"time"

	"magacin_backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo 是五个集合（articles/users/reservations/pickups/entries）统一的
// 持久化网关。所有方法带 context、显式返回 error，不往外 panic。
type Repo struct {
	DB *gorm.DB

	// AutoAdjust 打开后，预订/提货/进货会顺带调整 article 的库存计数。
	// 默认关（沿用手工对账流程）。
	AutoAdjust bool
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// lockForUpdate 只在 Postgres 上加行锁；sqlite 的事务本身就是串行的。
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Accounts

func (r *Repo) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) CreateAccount(ctx context.Context, a *models.Account) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repo) TouchAccountLogin(ctx context.Context, accountID, ip, ua string) error {
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"last_login_at": now,
			"last_seen_at":  now,
			"login_count":   gorm.Expr("login_count + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchAccountSeen(ctx context.Context, accountID string) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("last_seen_at", time.Now().UTC()).Error
}

func (r *Repo) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Users

// FindUserByEmail 精确匹配（大小写敏感），取第一条。
func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers 用户列表按名字升序。
func (r *Repo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *Repo) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	err := r.DB.WithContext(ctx).Where("role = ?", role).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// UpdateUserRole 是改角色的唯一入口（登录不再顺带改角色）。
func (r *Repo) UpdateUserRole(ctx context.Context, id, role string) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindUserByID(ctx, id)
}

// DeleteUser 删不存在的行算错误，不许静默成功。
func (r *Repo) DeleteUser(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountAdmins 引导首个管理员时用。
func (r *Repo) CountAdmins(ctx context.Context, adminRole string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", adminRole).
		Count(&n).Error
	return n, err
}
