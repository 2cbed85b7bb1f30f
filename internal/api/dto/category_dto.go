package dto

import "fmt"

// ==================== 类目服务响应 ====================

// UpstreamCategoryEdge 类目连接边
type UpstreamCategoryEdge struct {
	FromCategoryID int64 `json:"fromCategoryId"`
	ToCategoryID   int64 `json:"toCategoryId"`
}

// UpstreamCategoryResp 类目服务响应：出边列表 + 祖先路径
// ancestryPath 的分隔符不稳定 (逗号/斜杠都有)，解析放在 model 层做。
type UpstreamCategoryResp struct {
	CategoryID   int64                  `json:"categoryId"`
	AncestryPath string                 `json:"ancestryPath"`
	Connections  []UpstreamCategoryEdge `json:"connections"`
}

// Validate 边界校验
func (r *UpstreamCategoryResp) Validate() error {
	if r.CategoryID == 0 {
		return fmt.Errorf("类目服务响应缺少 categoryId")
	}
	return nil
}

// ==================== 前端请求 ====================

// CategoryCheckReq 商家-商品类目匹配检查请求
type CategoryCheckReq struct {
	VendorCategoryIDs []int64 `json:"vendor_category_ids" binding:"required"`
	ProductCategoryID int64   `json:"product_category_id" binding:"required"`
}
