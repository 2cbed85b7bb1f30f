package service

import (
	"testing"

	"ultrasooq_session_v1/internal/model"
)

// ==================== 单元测试 ====================

func TestPermissionResolver_MemberFlatSet(t *testing.T) {
	r := NewPermissionResolver(&model.Profile{
		TradeRole:   model.RoleMember,
		Permissions: []string{"product"},
	})

	if !r.CanAccess("product") {
		t.Error("集合内的权限应放行")
	}
	if r.CanAccess("order") {
		t.Error("集合外的权限应拒绝")
	}
}

func TestPermissionResolver_PrimaryUnrestricted(t *testing.T) {
	// 主账户 (非 MEMBER 角色) 不受权限集合约束，空集合也全放行
	r := NewPermissionResolver(&model.Profile{
		TradeRole:   model.RoleCompany,
		Permissions: nil,
	})

	for _, p := range []string{"product", "order", "anything-at-all"} {
		if !r.CanAccess(p) {
			t.Errorf("主账户应放行 %s", p)
		}
	}
}

func TestPermissionResolver_NilProfile_DeniesAll(t *testing.T) {
	r := NewPermissionResolver(nil)
	if r.CanAccess("product") {
		t.Error("画像缺席时应拒绝一切权限")
	}
}

func TestPermissionResolver_MemberEmptySet(t *testing.T) {
	r := NewPermissionResolver(&model.Profile{TradeRole: model.RoleMember})
	if r.CanAccess("product") {
		t.Error("空权限集合的 MEMBER 应被全部拒绝")
	}
}
