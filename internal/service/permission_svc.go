package service

import (
	"ultrasooq_session_v1/internal/model"
)

// PermissionResolver 子账户细粒度权限解析器
// 只对 MEMBER 角色生效：主账户 (非 MEMBER) 不受限，一律放行；
// MEMBER 的有效权限就是平面权限名集合的成员判定，没有层级也没有继承。
type PermissionResolver struct {
	unrestricted bool
	permissions  map[string]struct{}
}

// NewPermissionResolver 基于账户画像创建解析器
func NewPermissionResolver(profile *model.Profile) *PermissionResolver {
	r := &PermissionResolver{
		permissions: make(map[string]struct{}),
	}
	if profile == nil {
		// 画像缺失时按无权限的 MEMBER 处理，宁可关不可开
		return r
	}
	if !profile.IsMember() {
		r.unrestricted = true
		return r
	}
	for _, p := range profile.Permissions {
		r.permissions[p] = struct{}{}
	}
	return r
}

// CanAccess 判断是否持有权限 p
func (r *PermissionResolver) CanAccess(p string) bool {
	if r.unrestricted {
		return true
	}
	_, ok := r.permissions[p]
	return ok
}
