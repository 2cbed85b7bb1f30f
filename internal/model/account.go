package model

// AccountStatus 账户生命周期状态
// 由身份服务每次会话新鲜拉取，只在内存中短暂持有，禁止落盘。
type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"    // 正常
	StatusWaiting   AccountStatus = "WAITING"   // 待审核
	StatusInactive  AccountStatus = "INACTIVE"  // 已停用
	StatusReject    AccountStatus = "REJECT"    // 审核被拒
	StatusSuspended AccountStatus = "SUSPENDED" // 已冻结
)

// 账户角色常量
// MEMBER 是主账户下授权的子账户角色，权限受 Permission 集合约束；
// 其余角色 (COMPANY / FREELANCER / BUYER) 都视为主账户，不受约束。
const (
	RoleMember     = "MEMBER"
	RoleCompany    = "COMPANY"
	RoleFreelancer = "FREELANCER"
	RoleBuyer      = "BUYER"
)

// Profile 当前会话的账户画像 (瞬态，不建表)
// MemberStatus 仅在选中了子账户时有值，且优先于主账户状态生效。
type Profile struct {
	UserID       int64         `json:"user_id"`
	TradeRole    string        `json:"trade_role"`
	Status       AccountStatus `json:"status"`
	MemberStatus AccountStatus `json:"member_status,omitempty"`
	Permissions  []string      `json:"permissions"`
}

// EffectiveStatus 取生效状态：子账户状态优先
func (p *Profile) EffectiveStatus() AccountStatus {
	if p == nil {
		// 画像未加载时按最保守的非阻塞状态处理，UI 宁可关不可开
		return StatusWaiting
	}
	if p.MemberStatus != "" {
		return p.MemberStatus
	}
	if p.Status != "" {
		return p.Status
	}
	return StatusWaiting
}

// IsMember 是否为受限子账户
func (p *Profile) IsMember() bool {
	return p != nil && p.TradeRole == RoleMember
}
