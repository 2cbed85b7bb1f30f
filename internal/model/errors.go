package model

import "errors"

// 模型层通用错误
var (
	ErrCartLineNoOwner   = errors.New("购物车行缺少归属人 (device/user 必须二选一)")
	ErrCartLineDualOwner = errors.New("购物车行归属冲突 (device/user 不能同时存在)")
)
