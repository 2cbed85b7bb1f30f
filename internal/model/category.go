package model

import (
	"strconv"
	"strings"
)

// CategoryConnection 类目连接边 (有向)
// 含义：挂在 FromID 类目下的商品，可以归属到被授权经营 ToID 类目的商家。
// 方向性是上游约定，这里只做单跳匹配，不做传递闭包。
type CategoryConnection struct {
	FromID int64 `json:"from_id"`
	ToID   int64 `json:"to_id"`
}

// ParseAncestorPath 解析类目祖先路径字符串
// 上游返回格式不稳定，逗号分隔和斜杠分隔都出现过，这里两种都认。
// 非数字片段和空片段直接跳过，不报错。
func ParseAncestorPath(path string) []int64 {
	if path == "" {
		return nil
	}
	// 统一分隔符后再切
	normalized := strings.ReplaceAll(path, "/", ",")
	parts := strings.Split(normalized, ",")

	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
