package model

import (
	"time"

	"gorm.io/datatypes"
)

// 本地购物车行同步状态常量
const (
	CartSyncPending   = 0 // 本地已写，远端未确认
	CartSyncConfirmed = 1 // 远端已确认
)

// CartLine 零售购物车行 (本地会话模型)
// 归属人是 DeviceID 和 UserID 二选一：匿名态归设备，登录态归用户。
// 两个都填或都不填都是非法数据，Validate 会拦下来。
type CartLine struct {
	BaseModel
	// 1. 归属
	DeviceID string `gorm:"size:64;index" json:"device_id,omitempty"` // 匿名归属 (与 UserID 互斥)
	UserID   int64  `gorm:"index" json:"user_id,omitempty"`           // 登录归属

	// 2. 商品标识
	ProductID      int64 `gorm:"index" json:"product_id"`
	ProductPriceID int64 `gorm:"index" json:"product_price_id"` // 同一归属人下唯一，合并去重的依据

	// 3. 行数据
	Quantity          int            `json:"quantity"`
	ConfirmedQuantity int            `json:"-"` // 远端最后确认的数量，乐观更新失败时回滚到这里
	Variant           datatypes.JSON `json:"variant,omitempty"`
	AddedAt           time.Time      `json:"added_at"`

	// 4. 同步状态
	SyncStatus int `gorm:"default:0;comment:0-待确认 1-已确认" json:"-"`
}

func (CartLine) TableName() string { return "cart_lines" }

// Validate 校验归属互斥
func (l *CartLine) Validate() error {
	if l.DeviceID == "" && l.UserID == 0 {
		return ErrCartLineNoOwner
	}
	if l.DeviceID != "" && l.UserID != 0 {
		return ErrCartLineDualOwner
	}
	return nil
}

// RfqCartLine 询价单 (RFQ) 购物车行
// 只有登录态，没有匿名归属；Quantity 传 0 表示删除该行。
type RfqCartLine struct {
	BaseModel
	UserID       int64 `gorm:"index;not null" json:"user_id"`
	RfqProductID int64 `gorm:"index;not null" json:"rfq_product_id"`
	Quantity     int   `json:"quantity"`
}

func (RfqCartLine) TableName() string { return "rfq_cart_lines" }

// WishlistEntry 收藏夹条目，仅登录态
type WishlistEntry struct {
	BaseModel
	UserID    int64 `gorm:"index;not null;uniqueIndex:uk_wishlist_user_product" json:"user_id"`
	ProductID int64 `gorm:"not null;uniqueIndex:uk_wishlist_user_product" json:"product_id"`
}

func (WishlistEntry) TableName() string { return "wishlist_entries" }
