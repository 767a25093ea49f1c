package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const ArticleTable = "mag_articles"

// Article 是仓库里的一个库存单位。
// available 永远是 quantity - reserved 的派生值，只由 db 层重算，客户端不可直接写。
type Article struct {
	ID       string          `gorm:"type:uuid;primaryKey" json:"id"`
	Code     string          `gorm:"size:120;uniqueIndex;not null" json:"code"` // 唯一编号
	Name     string          `gorm:"size:200;not null" json:"name"`
	Location string          `gorm:"size:120;not null" json:"location"`
	Project  string          `gorm:"size:120" json:"project,omitempty"`
	Supplier string          `gorm:"size:200" json:"supplier,omitempty"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`

	Quantity  int `gorm:"not null;default:0" json:"quantity"`
	Reserved  int `gorm:"not null;default:0" json:"reserved"`
	Available int `gorm:"not null;default:0" json:"available"` // 派生列

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Article) TableName() string { return ArticleTable }
