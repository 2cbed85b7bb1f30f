package dto

import (
	"encoding/json"
	"fmt"
)

// ==================== 前端请求 ====================

// AddCartLineReq 加购请求 (set 语义，数量覆盖)
type AddCartLineReq struct {
	ProductID      int64           `json:"product_id" binding:"required"`
	ProductPriceID int64           `json:"product_price_id" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required,min=1"`
	Variant        json.RawMessage `json:"variant,omitempty"`
}

// IncrementCartLineReq 增量加购请求 (在现有数量上累加)
type IncrementCartLineReq struct {
	ProductID      int64 `json:"product_id" binding:"required"`
	ProductPriceID int64 `json:"product_price_id" binding:"required"`
	Delta          int   `json:"delta" binding:"required,min=1"`
}

// UpdateCartLineReq 修改数量请求
type UpdateCartLineReq struct {
	ProductPriceID int64 `json:"product_price_id" binding:"required"`
	Quantity       int   `json:"quantity" binding:"required,min=1"`
}

// RemoveCartLineReq 删除行请求
type RemoveCartLineReq struct {
	ProductPriceID int64 `json:"product_price_id" binding:"required"`
}

// RfqLineReq 询价单行请求 (quantity 传 0 表示删除)
type RfqLineReq struct {
	RfqProductID int64 `json:"rfq_product_id" binding:"required"`
	Quantity     int   `json:"quantity" binding:"min=0"`
}

// WishlistReq 收藏请求
type WishlistReq struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// ==================== 远端购物车服务响应 ====================

// UpstreamCartLine 远端购物车行 (匿名/登录两族接口共用)
type UpstreamCartLine struct {
	ID             int64 `json:"id"`
	ProductID      int64 `json:"productId"`
	ProductPriceID int64 `json:"productPriceId"`
	Quantity       int   `json:"quantity"`
}

// UpstreamCartResp 远端购物车服务通用响应包
type UpstreamCartResp struct {
	Status  string             `json:"status"`
	Message string             `json:"message,omitempty"`
	Data    []UpstreamCartLine `json:"data,omitempty"`
}

// Validate 边界校验：响应必须带 status 字段，未知负载快速失败
func (r *UpstreamCartResp) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("购物车服务响应缺少 status 字段")
	}
	if r.Status != "SUCCESS" && r.Status != "FAILED" {
		return fmt.Errorf("购物车服务响应 status 非法: %s", r.Status)
	}
	return nil
}

// OK 远端是否确认成功
func (r *UpstreamCartResp) OK() bool {
	return r.Status == "SUCCESS"
}
