package service

import (
	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/model"
)

// AccessGate 账户状态能力闸
// 由账户生命周期状态推导一组固定的布尔能力开关，驱动路由和功能区的可见性。
// 注意：这只是 UX 提示，不是安全边界——绕过它的客户端仍会被服务端独立拒绝。
type AccessGate struct {
	status model.AccountStatus
}

// NewAccessGate 基于最新拉取的账户画像创建能力闸
// profile 为 nil (尚未加载) 时取 WAITING：UI 宁可关不可开。
// 选中了子账户时，子账户状态优先于主账户状态。
func NewAccessGate(profile *model.Profile) *AccessGate {
	return &AccessGate{status: profile.EffectiveStatus()}
}

// Status 当前生效状态
func (g *AccessGate) Status() model.AccountStatus {
	return g.status
}

// ==================== 能力开关 ====================

// CanManageProducts 是否可管理商品
func (g *AccessGate) CanManageProducts() bool {
	return g.status == model.StatusActive
}

// CanAccessOrders 是否可进订单区
func (g *AccessGate) CanAccessOrders() bool {
	return g.status == model.StatusActive
}

// CanAccessRfq 是否可用询价功能
func (g *AccessGate) CanAccessRfq() bool {
	return g.status == model.StatusActive
}

// CanCreateMembers 是否可创建子账户
func (g *AccessGate) CanCreateMembers() bool {
	return g.status == model.StatusActive
}

// CanEditProfile 是否可编辑资料
// 待审核 (WAITING) 的账户也允许进资料页补全信息，这是唯一放宽的区域。
func (g *AccessGate) CanEditProfile() bool {
	return g.status == model.StatusActive || g.status == model.StatusWaiting
}

// Capabilities 打包全部能力开关
func (g *AccessGate) Capabilities() dto.CapabilityResp {
	return dto.CapabilityResp{
		CanManageProducts: g.CanManageProducts(),
		CanAccessOrders:   g.CanAccessOrders(),
		CanAccessRfq:      g.CanAccessRfq(),
		CanCreateMembers:  g.CanCreateMembers(),
		CanEditProfile:    g.CanEditProfile(),
	}
}

// ==================== 路由表 ====================

// routeStatusTable 路由 → 允许状态的静态表
// 不在表里的路由默认只对 ACTIVE 开放。
var routeStatusTable = map[string][]model.AccountStatus{
	"dashboard": {model.StatusActive, model.StatusWaiting},
	"profile":   {model.StatusActive, model.StatusWaiting},
	"products":  {model.StatusActive},
	"orders":    {model.StatusActive},
	"rfq":       {model.StatusActive},
	"members":   {model.StatusActive},
	"wallet":    {model.StatusActive},
	"settings":  {model.StatusActive, model.StatusWaiting},
}

// CanAccessRoute 查路由表判断当前状态是否可进入某路由
func (g *AccessGate) CanAccessRoute(routeName string) bool {
	allowed, ok := routeStatusTable[routeName]
	if !ok {
		return g.status == model.StatusActive
	}
	for _, st := range allowed {
		if st == g.status {
			return true
		}
	}
	return false
}
