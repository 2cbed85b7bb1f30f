package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/model"
	"ultrasooq_session_v1/internal/repository"
)

// ==================== 测试辅助 ====================

func newCartService(t *testing.T, failing bool) (*CartService, repository.CartRepository) {
	t.Helper()
	db := setupTestDB(t)
	repo := repository.NewCartRepository(db)

	if failing {
		return NewCartService(repo, newFailingStub(t)), repo
	}
	_, client := newUpstreamStub(t, nil)
	return NewCartService(repo, client), repo
}

func anonymousOwner(deviceID string) CartOwner { return CartOwner{DeviceID: deviceID} }
func userOwner(userID int64) CartOwner         { return CartOwner{UserID: userID, Token: "t"} }

// ==================== set 语义 ====================

func TestCartService_Add_SetSemantics(t *testing.T) {
	svc, repo := newCartService(t, false)
	ctx := context.Background()
	owner := anonymousOwner("dev-1")

	// 同一商品先 add q=2 再 add q=5：数量应是 5，不是 7
	if err := svc.Add(ctx, owner, dto.AddCartLineReq{ProductID: 1, ProductPriceID: 10, Quantity: 2}); err != nil {
		t.Fatalf("首次加购失败: %v", err)
	}
	if err := svc.Add(ctx, owner, dto.AddCartLineReq{ProductID: 1, ProductPriceID: 10, Quantity: 5}); err != nil {
		t.Fatalf("二次加购失败: %v", err)
	}

	line, err := repo.GetDeviceLine(ctx, "dev-1", 10)
	if err != nil {
		t.Fatalf("行查询失败: %v", err)
	}
	if line.Quantity != 5 {
		t.Errorf("set 语义下数量应为 5，实际 %d", line.Quantity)
	}

	lines, _ := repo.ListByDevice(ctx, "dev-1")
	if len(lines) != 1 {
		t.Errorf("同一 productPriceId 不应出现重复行，实际 %d 行", len(lines))
	}
}

func TestCartService_Increment_AddsUp(t *testing.T) {
	svc, repo := newCartService(t, false)
	ctx := context.Background()
	owner := anonymousOwner("dev-1")

	svc.Add(ctx, owner, dto.AddCartLineReq{ProductID: 1, ProductPriceID: 10, Quantity: 2})
	if err := svc.Increment(ctx, owner, dto.IncrementCartLineReq{ProductID: 1, ProductPriceID: 10, Delta: 3}); err != nil {
		t.Fatalf("增量加购失败: %v", err)
	}

	line, _ := repo.GetDeviceLine(ctx, "dev-1", 10)
	if line.Quantity != 5 {
		t.Errorf("显式增量语义下数量应为 5，实际 %d", line.Quantity)
	}
}

// ==================== 乐观更新回滚 ====================

func TestCartService_AddRollbackOnUpstreamFailure(t *testing.T) {
	svc, repo := newCartService(t, true)
	ctx := context.Background()
	owner := anonymousOwner("dev-1")

	err := svc.Add(ctx, owner, dto.AddCartLineReq{ProductID: 1, ProductPriceID: 10, Quantity: 2})
	if !errors.Is(err, ErrCartSync) {
		t.Fatalf("远端失败应返回 ErrCartSync，实际 %v", err)
	}

	// 新建的行应被回滚删除
	count, _ := repo.CountByDevice(ctx, "dev-1")
	if count != 0 {
		t.Errorf("回滚后不应残留行，实际 %d", count)
	}
}

func TestCartService_UpdateRollbackToConfirmed(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCartRepository(db)
	ctx := context.Background()
	owner := anonymousOwner("dev-1")

	// 先用正常远端把数量 3 确认下来
	_, okClient := newUpstreamStub(t, nil)
	okSvc := NewCartService(repo, okClient)
	if err := okSvc.Add(ctx, owner, dto.AddCartLineReq{ProductID: 1, ProductPriceID: 10, Quantity: 3}); err != nil {
		t.Fatalf("前置加购失败: %v", err)
	}

	// 换故障远端改数量：本地应回滚到最后确认值 3
	badSvc := NewCartService(repo, newFailingStub(t))
	err := badSvc.Update(ctx, owner, dto.UpdateCartLineReq{ProductPriceID: 10, Quantity: 9})
	if !errors.Is(err, ErrCartSync) {
		t.Fatalf("远端失败应返回 ErrCartSync，实际 %v", err)
	}

	line, _ := repo.GetDeviceLine(ctx, "dev-1", 10)
	if line.Quantity != 3 {
		t.Errorf("应回滚到最后确认数量 3，实际 %d", line.Quantity)
	}
}

func TestCartService_RemoveRollbackRestoresLine(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCartRepository(db)
	ctx := context.Background()
	owner := anonymousOwner("dev-1")

	_, okClient := newUpstreamStub(t, nil)
	okSvc := NewCartService(repo, okClient)
	okSvc.Add(ctx, owner, dto.AddCartLineReq{ProductID: 1, ProductPriceID: 10, Quantity: 2})

	badSvc := NewCartService(repo, newFailingStub(t))
	if err := badSvc.Remove(ctx, owner, 10); !errors.Is(err, ErrCartSync) {
		t.Fatalf("远端失败应返回 ErrCartSync，实际 %v", err)
	}

	line, err := repo.GetDeviceLine(ctx, "dev-1", 10)
	if err != nil {
		t.Fatal("删除失败后行应被恢复")
	}
	if line.Quantity != 2 {
		t.Errorf("恢复的行数量应为 2，实际 %d", line.Quantity)
	}
}

// ==================== 登录合并协议 ====================

// TestCartService_MergeDeviceCart 核心合并场景：
// 设备车 {price:5, qty:2} + 用户车 {price:5, qty:1}
// → 用户名下恰好一行 {price:5, qty:3}，设备行清零
func TestCartService_MergeDeviceCart(t *testing.T) {
	svc, repo := newCartService(t, false)
	ctx := context.Background()

	svc.Add(ctx, anonymousOwner("dev-1"), dto.AddCartLineReq{ProductID: 1, ProductPriceID: 5, Quantity: 2})
	svc.Add(ctx, userOwner(100), dto.AddCartLineReq{ProductID: 1, ProductPriceID: 5, Quantity: 1})
	// 设备车里再放一个用户车没有的商品
	svc.Add(ctx, anonymousOwner("dev-1"), dto.AddCartLineReq{ProductID: 2, ProductPriceID: 8, Quantity: 4})

	if err := svc.MergeDeviceCart(ctx, "dev-1", 100, "t"); err != nil {
		t.Fatalf("合并失败: %v", err)
	}

	// 重复商品合并为一行，数量相加
	merged, err := repo.GetUserLine(ctx, 100, 5)
	if err != nil {
		t.Fatalf("合并后的行查询失败: %v", err)
	}
	if merged.Quantity != 3 {
		t.Errorf("合并后数量应为 3，实际 %d", merged.Quantity)
	}

	// 独有商品改归属
	moved, err := repo.GetUserLine(ctx, 100, 8)
	if err != nil {
		t.Fatalf("改归属的行查询失败: %v", err)
	}
	if moved.DeviceID != "" {
		t.Errorf("改归属后 device_id 应清空，实际 %q", moved.DeviceID)
	}

	// 设备名下不允许有残留
	count, _ := repo.CountByDevice(ctx, "dev-1")
	if count != 0 {
		t.Errorf("合并后设备行应清零，实际 %d", count)
	}

	userLines, _ := repo.ListByUser(ctx, 100)
	if len(userLines) != 2 {
		t.Errorf("用户车应恰好 2 行，实际 %d", len(userLines))
	}
}

func TestCartService_MergeIdempotent(t *testing.T) {
	svc, repo := newCartService(t, false)
	ctx := context.Background()

	svc.Add(ctx, anonymousOwner("dev-1"), dto.AddCartLineReq{ProductID: 1, ProductPriceID: 5, Quantity: 2})

	if err := svc.MergeDeviceCart(ctx, "dev-1", 100, "t"); err != nil {
		t.Fatalf("首次合并失败: %v", err)
	}
	// 第二次调用必须是 no-op
	if err := svc.MergeDeviceCart(ctx, "dev-1", 100, "t"); err != nil {
		t.Fatalf("二次合并应为 no-op: %v", err)
	}

	line, _ := repo.GetUserLine(ctx, 100, 5)
	if line.Quantity != 2 {
		t.Errorf("二次合并不应改变数量，实际 %d", line.Quantity)
	}
}

// TestCartService_MergeAttachFailureDoesNotBlock 远端 attach 失败
// 只能降级 (拆分购物车)，不能让合并/登录报错。
func TestCartService_MergeAttachFailureDoesNotBlock(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCartRepository(db)
	ctx := context.Background()

	_, okClient := newUpstreamStub(t, nil)
	okSvc := NewCartService(repo, okClient)
	okSvc.Add(ctx, anonymousOwner("dev-1"), dto.AddCartLineReq{ProductID: 1, ProductPriceID: 5, Quantity: 2})

	badSvc := NewCartService(repo, newFailingStub(t))
	if err := badSvc.MergeDeviceCart(ctx, "dev-1", 100, "t"); err != nil {
		t.Fatalf("attach 失败不应让合并报错: %v", err)
	}

	// 本地重新归属仍然完成
	if _, err := repo.GetUserLine(ctx, 100, 5); err != nil {
		t.Error("本地重新归属应已完成")
	}
}

// ==================== 读路径排序 ====================

// TestCartService_ListMergesBeforeFirstAuthenticatedRead
// 登录态第一次 List 必须先吃掉设备行，避免首屏空车一闪。
func TestCartService_ListMergesBeforeFirstAuthenticatedRead(t *testing.T) {
	svc, _ := newCartService(t, false)
	ctx := context.Background()

	svc.Add(ctx, anonymousOwner("dev-1"), dto.AddCartLineReq{ProductID: 1, ProductPriceID: 5, Quantity: 2})

	lines, err := svc.List(ctx, userOwner(100), "dev-1")
	if err != nil {
		t.Fatalf("登录态读取失败: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Errorf("首次登录态读取就应看到合并后的行: %+v", lines)
	}
}

// ==================== 请求代数守卫 ====================

// TestCartService_StaleFailureDoesNotRollbackNewerWrite
// 第一笔写的远端响应悬住，期间第二笔更新的乐观写已确认；
// 迟到的失败响应代数已过期，不允许把数量回滚到旧值。
func TestCartService_StaleFailureDoesNotRollbackNewerWrite(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCartRepository(db)
	ctx := context.Background()
	owner := userOwner(100)

	firstArrived := make(chan struct{})
	release := make(chan struct{})
	_, client := newUpstreamStub(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Quantity int `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")

		if body.Quantity == 5 {
			// 旧请求：挂起等第二笔完成，再以失败收场
			close(firstArrived)
			<-release
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"status":"FAILED"}`))
			return
		}
		w.Write([]byte(`{"status":"SUCCESS"}`))
	})
	svc := NewCartService(repo, client)

	if err := svc.Add(ctx, owner, dto.AddCartLineReq{ProductID: 1, ProductPriceID: 10, Quantity: 2}); err != nil {
		t.Fatalf("初始加购失败: %v", err)
	}

	staleErr := make(chan error, 1)
	go func() {
		staleErr <- svc.Update(ctx, owner, dto.UpdateCartLineReq{ProductPriceID: 10, Quantity: 5})
	}()
	<-firstArrived

	// 旧请求悬住期间，更新的写入完成并确认
	if err := svc.Update(ctx, owner, dto.UpdateCartLineReq{ProductPriceID: 10, Quantity: 9}); err != nil {
		t.Fatalf("第二笔写入失败: %v", err)
	}
	close(release)

	if err := <-staleErr; !errors.Is(err, ErrCartSync) {
		t.Fatalf("旧请求应报同步失败，实际 %v", err)
	}

	line, err := repo.GetUserLine(ctx, 100, 10)
	if err != nil {
		t.Fatalf("行查询失败: %v", err)
	}
	if line.Quantity != 9 {
		t.Errorf("迟到的失败不应覆盖更新的值，应保持 9，实际 %d", line.Quantity)
	}
	if line.ConfirmedQuantity != 9 {
		t.Errorf("确认数量应保持 9，实际 %d", line.ConfirmedQuantity)
	}
}

// ==================== 归属互斥 ====================

func TestCartLine_OwnerExclusive(t *testing.T) {
	noOwner := model.CartLine{ProductID: 1, ProductPriceID: 5, Quantity: 1}
	if err := noOwner.Validate(); !errors.Is(err, model.ErrCartLineNoOwner) {
		t.Errorf("无归属应被拒绝，实际 %v", err)
	}

	dual := model.CartLine{DeviceID: "d", UserID: 1, ProductID: 1, ProductPriceID: 5, Quantity: 1}
	if err := dual.Validate(); !errors.Is(err, model.ErrCartLineDualOwner) {
		t.Errorf("双归属应被拒绝，实际 %v", err)
	}
}
