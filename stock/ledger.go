// Package stock owns the derivation rule for article availability and the
// stock-status thresholds. Everything here is pure; persistence lives in db.
package stock

import "errors"

// DefaultLowThreshold 对应 available < 10 视为库存偏低。
const DefaultLowThreshold = 10

var (
	ErrNegativeAvailable = errors.New("available stock would be negative")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrNegativeReserved  = errors.New("reserved must not be negative")
)

// Status 库存状态分级。
type Status string

const (
	StatusCritical Status = "critical" // available <= 0
	StatusLow      Status = "low"      // 0 < available < threshold
	StatusNormal   Status = "normal"
)

// Classify 按阈值分级；threshold <= 0 时退回默认值。
func Classify(available, lowThreshold int) Status {
	if lowThreshold <= 0 {
		lowThreshold = DefaultLowThreshold
	}
	switch {
	case available <= 0:
		return StatusCritical
	case available < lowThreshold:
		return StatusLow
	default:
		return StatusNormal
	}
}

// Patch 是对一篇 article 库存字段的部分更新：nil 表示该字段未提交，
// 必须沿用库里已有的值（不能当 0 处理）。
type Patch struct {
	Quantity *int
	Reserved *int
}

// Touches 报告这次更新是否真的动到了库存字段。
func (p Patch) Touches() bool { return p.Quantity != nil || p.Reserved != nil }

// Derive 用提交值与既有值算出新的 (quantity, reserved, available)。
// 负的 available 一律拒绝，不做 clamp —— 让调用方把错误原样抛给用户。
func Derive(prevQuantity, prevReserved int, p Patch) (quantity, reserved, available int, err error) {
	quantity = prevQuantity
	reserved = prevReserved
	if p.Quantity != nil {
		quantity = *p.Quantity
	}
	if p.Reserved != nil {
		reserved = *p.Reserved
	}
	if quantity < 0 {
		return 0, 0, 0, ErrNegativeQuantity
	}
	if reserved < 0 {
		return 0, 0, 0, ErrNegativeReserved
	}
	available = quantity - reserved
	if available < 0 {
		return 0, 0, 0, ErrNegativeAvailable
	}
	return quantity, reserved, available, nil
}
