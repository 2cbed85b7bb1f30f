package service

import (
	"context"
	"net/http"
	"testing"

	"ultrasooq_session_v1/internal/model"
)

// ==================== 匹配算法 ====================

func TestMatchCategoryConnection_EdgeWins(t *testing.T) {
	// V={10,20} P=30 边 30→20：目标端点在商家集合里 → 已连接
	connected := MatchCategoryConnection(
		[]int64{10, 20}, 30,
		[]model.CategoryConnection{{FromID: 30, ToID: 20}},
		nil,
	)
	if !connected {
		t.Error("连接边命中应判已连接")
	}
}

func TestMatchCategoryConnection_DirectMembership(t *testing.T) {
	if !MatchCategoryConnection([]int64{10, 30}, 30, nil, nil) {
		t.Error("商品类目本身在商家集合里应判已连接")
	}
}

func TestMatchCategoryConnection_AncestorFallback(t *testing.T) {
	// V={10,20} P=30 无边，祖先路径 [30,40,20] → 已连接
	if !MatchCategoryConnection([]int64{10, 20}, 30, nil, []int64{30, 40, 20}) {
		t.Error("祖先命中应判已连接")
	}
	// V={10} 祖先 [30,40,50] → 未连接
	if MatchCategoryConnection([]int64{10}, 30, nil, []int64{30, 40, 50}) {
		t.Error("全部未命中应判未连接")
	}
}

func TestMatchCategoryConnection_EmptyInputs(t *testing.T) {
	if MatchCategoryConnection(nil, 30, nil, nil) {
		t.Error("商家集合为空应判未连接")
	}
	if MatchCategoryConnection([]int64{10}, 0, nil, nil) {
		t.Error("商品类目缺失应判未连接")
	}
}

func TestMatchCategoryConnection_EdgeIsOneHop(t *testing.T) {
	// 边只查一跳：30→40 且 40→20，商家持有 20，但不做传递闭包 → 未连接
	edges := []model.CategoryConnection{{FromID: 30, ToID: 40}}
	if MatchCategoryConnection([]int64{20}, 30, edges, nil) {
		t.Error("连接边不应传递闭包")
	}
}

// ==================== 祖先路径解析 ====================

func TestParseAncestorPath_Delimiters(t *testing.T) {
	cases := []struct {
		path string
		want []int64
	}{
		{"30,40,20", []int64{30, 40, 20}},
		{"30/40/20", []int64{30, 40, 20}},
		{" 30 , 40 ", []int64{30, 40}},
		{"30,,abc,20", []int64{30, 20}},
		{"", nil},
	}
	for _, tc := range cases {
		got := model.ParseAncestorPath(tc.path)
		if len(got) != len(tc.want) {
			t.Errorf("ParseAncestorPath(%q) = %v, want %v", tc.path, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ParseAncestorPath(%q)[%d] = %d, want %d", tc.path, i, got[i], tc.want[i])
			}
		}
	}
}

// ==================== 远端降级 ====================

func TestCategoryService_UpstreamDownFailsClosed(t *testing.T) {
	svc := NewCategoryService(newFailingStub(t))

	// 类目服务挂了：没有边和祖先数据，只剩直连判定
	if svc.CheckConnection(context.Background(), []int64{10}, 30) {
		t.Error("数据拉不到时应保守判未连接")
	}
	if !svc.CheckConnection(context.Background(), []int64{30}, 30) {
		t.Error("直连判定不依赖远端数据，应仍可命中")
	}
}

func TestCategoryService_CheckConnection(t *testing.T) {
	_, client := newUpstreamStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"categoryId": 30,
			"ancestryPath": "1/7/30",
			"connections": [{"fromCategoryId": 30, "toCategoryId": 20}]
		}`))
	})
	svc := NewCategoryService(client)

	if !svc.CheckConnection(context.Background(), []int64{20}, 30) {
		t.Error("连接边命中应判已连接")
	}
	if !svc.CheckConnection(context.Background(), []int64{7}, 30) {
		t.Error("祖先命中应判已连接")
	}
	if svc.CheckConnection(context.Background(), []int64{99}, 30) {
		t.Error("未命中应判未连接")
	}
}
