// db/repo_articles.go
package db

import (
	"context"

	"magacin_backend/models"
	"magacin_backend/stock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ArticlePatch 部分更新：nil 字段表示“没提交，保持原值”。
type ArticlePatch struct {
	Code     *string
	Name     *string
	Location *string
	Project  *string
	Supplier *string
	Price    *decimal.Decimal
	Quantity *int
	Reserved *int
}

func (p ArticlePatch) stockPatch() stock.Patch {
	return stock.Patch{Quantity: p.Quantity, Reserved: p.Reserved}
}

// ListArticles 默认最近创建的在前。
func (r *Repo) ListArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&articles).Error
	return articles, err
}

func (r *Repo) FindArticleByID(ctx context.Context, id string) (*models.Article, error) {
	var a models.Article
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindArticleByCode(ctx context.Context, code string) (*models.Article, error) {
	var a models.Article
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArticle 在落库前重算 available；调用方给的 Available 一律忽略。
func (r *Repo) CreateArticle(ctx context.Context, a *models.Article) error {
	q, res, avail, err := stock.Derive(0, 0, stock.Patch{Quantity: &a.Quantity, Reserved: &a.Reserved})
	if err != nil {
		return err
	}
	a.Quantity, a.Reserved, a.Available = q, res, avail
	return r.DB.WithContext(ctx).Create(a).Error
}

// UpdateArticle 部分合并更新。动到 quantity/reserved 时在同一个事务里
// 锁行、用库里的旧值补齐缺的那个字段再重算 available。
func (r *Repo) UpdateArticle(ctx context.Context, id string, p ArticlePatch) (*models.Article, error) {
	var out models.Article
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Article
		if err := lockForUpdate(tx).First(&a, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if p.Code != nil {
			updates["code"] = *p.Code
		}
		if p.Name != nil {
			updates["name"] = *p.Name
		}
		if p.Location != nil {
			updates["location"] = *p.Location
		}
		if p.Project != nil {
			updates["project"] = *p.Project
		}
		if p.Supplier != nil {
			updates["supplier"] = *p.Supplier
		}
		if p.Price != nil {
			updates["price"] = *p.Price
		}

		if sp := p.stockPatch(); sp.Touches() {
			q, res, avail, err := stock.Derive(a.Quantity, a.Reserved, sp)
			if err != nil {
				return err
			}
			updates["quantity"] = q
			updates["reserved"] = res
			updates["available"] = avail
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Article{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) DeleteArticle(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Article{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustStock 单笔事务的增量调整：quantity += qtyDelta, reserved += reservedDelta,
// available 重算。预订/提货/进货要联动库存时走的就是这条路。
func (r *Repo) AdjustStock(ctx context.Context, articleID string, qtyDelta, reservedDelta int) (*models.Article, error) {
	var out models.Article
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return adjustStockTx(tx, articleID, qtyDelta, reservedDelta, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// adjustStockTx 可在已有事务里复用。
func adjustStockTx(tx *gorm.DB, articleID string, qtyDelta, reservedDelta int, out *models.Article) error {
	var a models.Article
	if err := lockForUpdate(tx).First(&a, "id = ?", articleID).Error; err != nil {
		return err
	}
	q := a.Quantity + qtyDelta
	res := a.Reserved + reservedDelta
	newQ, newRes, avail, err := stock.Derive(a.Quantity, a.Reserved, stock.Patch{Quantity: &q, Reserved: &res})
	if err != nil {
		return err
	}
	if err := tx.Model(&models.Article{}).Where("id = ?", articleID).
		Updates(map[string]interface{}{
			"quantity":  newQ,
			"reserved":  newRes,
			"available": avail,
		}).Error; err != nil {
		return err
	}
	if out != nil {
		return tx.First(out, "id = ?", articleID).Error
	}
	return nil
}
