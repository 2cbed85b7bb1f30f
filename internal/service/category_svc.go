package service

import (
	"context"
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/model"
)

// ==================== 匹配算法 (纯函数) ====================

// MatchCategoryConnection 判断商家授权类目是否覆盖某商品类目
// 按优先级逐条匹配，命中即返回：
// 1. 连接边：任一边的目标端点落在商家类目集合里 → 已连接 (人工维护的等价映射，权威)
// 2. 直连：商品类目本身就在商家集合里 → 已连接
// 3. 祖先兜底：祖先路径上任一 id 在商家集合里 → 已连接 (给未录边的旧类目用)
// 4. 都没命中 → 未连接
// 边只查一跳，不做传递闭包；入参缺失/为空一律按未连接处理，不报错。
func MatchCategoryConnection(vendorCategoryIDs []int64, productCategoryID int64, edges []model.CategoryConnection, ancestorPath []int64) bool {
	if len(vendorCategoryIDs) == 0 || productCategoryID == 0 {
		return false
	}

	vendorSet := make(map[int64]struct{}, len(vendorCategoryIDs))
	for _, id := range vendorCategoryIDs {
		vendorSet[id] = struct{}{}
	}

	// 1. 连接边优先
	for _, edge := range edges {
		if _, ok := vendorSet[edge.ToID]; ok {
			return true
		}
	}

	// 2. 直接授权
	if _, ok := vendorSet[productCategoryID]; ok {
		return true
	}

	// 3. 祖先路径兜底
	for _, ancestorID := range ancestorPath {
		if _, ok := vendorSet[ancestorID]; ok {
			return true
		}
	}

	return false
}

// ==================== 类目服务客户端 ====================

// CategoryService 类目服务客户端 + 匹配入口
type CategoryService struct {
	client *resty.Client
}

// NewCategoryService 创建类目服务
func NewCategoryService(client *resty.Client) *CategoryService {
	return &CategoryService{client: client}
}

// CheckConnection 拉取商品类目的连接边和祖先路径后做匹配
// 类目服务不可用时按保守的"未连接"处理，不让渲染路径崩掉。
func (s *CategoryService) CheckConnection(ctx context.Context, vendorCategoryIDs []int64, productCategoryID int64) bool {
	edges, ancestors, err := s.fetchCategory(ctx, productCategoryID)
	if err != nil {
		log.Printf("[Category] 类目数据拉取失败，按未连接处理: %v", err)
		// 降级：没有边和祖先数据时仍可做直连判定
		return MatchCategoryConnection(vendorCategoryIDs, productCategoryID, nil, nil)
	}
	return MatchCategoryConnection(vendorCategoryIDs, productCategoryID, edges, ancestors)
}

// fetchCategory 拉取某类目的出边和祖先路径
func (s *CategoryService) fetchCategory(ctx context.Context, categoryID int64) ([]model.CategoryConnection, []int64, error) {
	var result dto.UpstreamCategoryResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/category/%d", categoryID))
	if err != nil {
		return nil, nil, fmt.Errorf("网络错误: %w", err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("远端返回 %d", resp.StatusCode())
	}
	if err := result.Validate(); err != nil {
		return nil, nil, err
	}

	edges := make([]model.CategoryConnection, 0, len(result.Connections))
	for _, e := range result.Connections {
		edges = append(edges, model.CategoryConnection{FromID: e.FromCategoryID, ToID: e.ToCategoryID})
	}
	return edges, model.ParseAncestorPath(result.AncestryPath), nil
}
