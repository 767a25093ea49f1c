// models/stock.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const ReservationTable = "mag_reservations"
const PickupTable = "mag_pickups"
const EntryTable = "mag_entries"

// Reservation 把库存承诺给某个用户，等待提货。
// 注意：创建预订默认不改 Article.reserved（手工对账流程），
// 自动扣减要开 STOCK_AUTO_ADJUST。
type Reservation struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID       string    `gorm:"type:uuid;index;not null" json:"articleId"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	UserID          string    `gorm:"type:uuid;index;not null" json:"userId"`
	ReservationCode string    `gorm:"size:7;not null" json:"reservationCode"` // 确认码，固定 7 位
	CreatedAt       time.Time `json:"createdAt"`
}

// Pickup 记录一次实际提货。
type Pickup struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID  string    `gorm:"type:uuid;index;not null" json:"articleId"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UserID     string    `gorm:"type:uuid;index;not null" json:"userId"`
	PickupCode string    `gorm:"size:7;not null" json:"pickupCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Entry 是进货记录，价格取进货当时的单价。
type Entry struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	ArticleID string          `gorm:"type:uuid;index;not null" json:"articleId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Supplier  string          `gorm:"size:200" json:"supplier"`
	EntryDate time.Time       `gorm:"index;not null" json:"entryDate"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (Reservation) TableName() string { return ReservationTable }
func (Pickup) TableName() string      { return PickupTable }
func (Entry) TableName() string       { return EntryTable }
