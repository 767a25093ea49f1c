// db/repo_stock.go
package db

import (
	"context"
	"time"

	"magacin_backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReservationRow / PickupRow / EntryRow 是列表用的打平联查行：
// 带上 article 的 code+name（和 user 的 name），前端不用再查第二趟。

type ReservationRow struct {
	ID              string    `json:"id"`
	ArticleID       string    `json:"articleId"`
	Quantity        int       `json:"quantity"`
	UserID          string    `json:"userId"`
	ReservationCode string    `json:"reservationCode"`
	CreatedAt       time.Time `json:"createdAt"`

	ArticleCode string `json:"articleCode"`
	ArticleName string `json:"articleName"`
	UserName    string `json:"userName"`
}

type PickupRow struct {
	ID         string    `json:"id"`
	ArticleID  string    `json:"articleId"`
	Quantity   int       `json:"quantity"`
	UserID     string    `json:"userId"`
	PickupCode string    `json:"pickupCode"`
	CreatedAt  time.Time `json:"createdAt"`

	ArticleCode string `json:"articleCode"`
	ArticleName string `json:"articleName"`
	UserName    string `json:"userName"`
}

type EntryRow struct {
	ID        string          `json:"id"`
	ArticleID string          `json:"articleId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Supplier  string          `json:"supplier"`
	EntryDate time.Time       `json:"entryDate"`
	CreatedAt time.Time       `json:"createdAt"`

	ArticleCode string `json:"articleCode"`
	ArticleName string `json:"articleName"`
}

// Reservations

func (r *Repo) ListReservations(ctx context.Context) ([]ReservationRow, error) {
	var rows []ReservationRow
	err := r.DB.WithContext(ctx).
		Table(models.ReservationTable+" r").
		Select(`
			r.id, r.article_id, r.quantity, r.user_id, r.reservation_code, r.created_at,
			a.code AS article_code,
			a.name AS article_name,
			u.name AS user_name
		`).
		Joins("LEFT JOIN "+models.ArticleTable+" a ON a.id = r.article_id").
		Joins("LEFT JOIN "+models.UserTable+" u ON u.id = r.user_id").
		Order("r.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// CreateReservation 创建后在同一事务里读回联查行。
// AutoAdjust 开着的话顺带把 article.reserved 加上去。
func (r *Repo) CreateReservation(ctx context.Context, res *models.Reservation) (*ReservationRow, error) {
	var row ReservationRow
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(res).Error; err != nil {
			return err
		}
		if r.AutoAdjust {
			if err := adjustStockTx(tx, res.ArticleID, 0, res.Quantity, nil); err != nil {
				return err
			}
		}
		return tx.
			Table(models.ReservationTable+" r").
			Select(`
				r.id, r.article_id, r.quantity, r.user_id, r.reservation_code, r.created_at,
				a.code AS article_code,
				a.name AS article_name,
				u.name AS user_name
			`).
			Joins("LEFT JOIN "+models.ArticleTable+" a ON a.id = r.article_id").
			Joins("LEFT JOIN "+models.UserTable+" u ON u.id = r.user_id").
			Where("r.id = ?", res.ID).
			Scan(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repo) DeleteReservation(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Reservation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Pickups

func (r *Repo) ListPickups(ctx context.Context) ([]PickupRow, error) {
	var rows []PickupRow
	err := r.DB.WithContext(ctx).
		Table(models.PickupTable+" p").
		Select(`
			p.id, p.article_id, p.quantity, p.user_id, p.pickup_code, p.created_at,
			a.code AS article_code,
			a.name AS article_name,
			u.name AS user_name
		`).
		Joins("LEFT JOIN "+models.ArticleTable+" a ON a.id = p.article_id").
		Joins("LEFT JOIN "+models.UserTable+" u ON u.id = p.user_id").
		Order("p.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// CreatePickup：AutoAdjust 时扣减 quantity，reserved 最多扣到 0
// （没有预订的直接提货不该把 reserved 打成负数）。
func (r *Repo) CreatePickup(ctx context.Context, p *models.Pickup) (*PickupRow, error) {
	var row PickupRow
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if r.AutoAdjust {
			var a models.Article
			if err := lockForUpdate(tx).First(&a, "id = ?", p.ArticleID).Error; err != nil {
				return err
			}
			resDelta := -p.Quantity
			if a.Reserved < p.Quantity {
				resDelta = -a.Reserved
			}
			if err := adjustStockTx(tx, p.ArticleID, -p.Quantity, resDelta, nil); err != nil {
				return err
			}
		}
		return tx.
			Table(models.PickupTable+" p").
			Select(`
				p.id, p.article_id, p.quantity, p.user_id, p.pickup_code, p.created_at,
				a.code AS article_code,
				a.name AS article_name,
				u.name AS user_name
			`).
			Joins("LEFT JOIN "+models.ArticleTable+" a ON a.id = p.article_id").
			Joins("LEFT JOIN "+models.UserTable+" u ON u.id = p.user_id").
			Where("p.id = ?", p.ID).
			Scan(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repo) DeletePickup(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Pickup{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Entries

// ListEntries 按进货日期倒序。
func (r *Repo) ListEntries(ctx context.Context) ([]EntryRow, error) {
	var rows []EntryRow
	err := r.DB.WithContext(ctx).
		Table(models.EntryTable+" e").
		Select(`
			e.id, e.article_id, e.quantity, e.price, e.supplier, e.entry_date, e.created_at,
			a.code AS article_code,
			a.name AS article_name
		`).
		Joins("LEFT JOIN "+models.ArticleTable+" a ON a.id = e.article_id").
		Order("e.entry_date DESC").
		Scan(&rows).Error
	return rows, err
}

// CreateEntry：AutoAdjust 时进货加到 quantity 上。
func (r *Repo) CreateEntry(ctx context.Context, e *models.Entry) (*EntryRow, error) {
	var row EntryRow
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		if r.AutoAdjust {
			if err := adjustStockTx(tx, e.ArticleID, e.Quantity, 0, nil); err != nil {
				return err
			}
		}
		return tx.
			Table(models.EntryTable+" e").
			Select(`
				e.id, e.article_id, e.quantity, e.price, e.supplier, e.entry_date, e.created_at,
				a.code AS article_code,
				a.name AS article_name
			`).
			Joins("LEFT JOIN "+models.ArticleTable+" a ON a.id = e.article_id").
			Where("e.id = ?", e.ID).
			Scan(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repo) DeleteEntry(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Entry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
