package dto

import "fmt"

// ==================== 身份服务响应 ====================

// UpstreamProfileResp 身份服务的账户画像响应
// status / permissions 每次会话新鲜拉取，只读消费，禁止落盘。
type UpstreamProfileResp struct {
	UserID       int64    `json:"userId"`
	TradeRole    string   `json:"tradeRole"`
	Status       string   `json:"status"`
	MemberStatus string   `json:"memberStatus,omitempty"`
	Permissions  []string `json:"permissions"`
}

// Validate 边界校验
func (r *UpstreamProfileResp) Validate() error {
	if r.UserID == 0 {
		return fmt.Errorf("身份服务响应缺少 userId")
	}
	if r.Status == "" {
		return fmt.Errorf("身份服务响应缺少 status")
	}
	return nil
}

// ==================== 会话 API 响应 ====================

// CapabilityResp 能力开关响应 (仅 UI 提示用，服务端仍会独立鉴权)
type CapabilityResp struct {
	CanManageProducts bool `json:"can_manage_products"`
	CanAccessOrders   bool `json:"can_access_orders"`
	CanAccessRfq      bool `json:"can_access_rfq"`
	CanCreateMembers  bool `json:"can_create_members"`
	CanEditProfile    bool `json:"can_edit_profile"`
}
