package service

import (
	"context"
	"errors"
	"testing"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/repository"
)

// ==================== 单元测试 ====================

func newRfqService(t *testing.T, failing bool) (*RfqService, repository.RfqRepository) {
	t.Helper()
	db := setupTestDB(t)
	repo := repository.NewRfqRepository(db)
	if failing {
		return NewRfqService(repo, newFailingStub(t)), repo
	}
	_, client := newUpstreamStub(t, nil)
	return NewRfqService(repo, client), repo
}

func TestRfqService_AnonymousMutationForcesLogin(t *testing.T) {
	svc, _ := newRfqService(t, false)

	// 询价车没有匿名态：未登录写入必须先引导登录
	err := svc.Put(context.Background(), anonymousOwner("dev-1"), dto.RfqLineReq{RfqProductID: 7, Quantity: 2})
	if !errors.Is(err, ErrLoginRequired) {
		t.Errorf("未登录写入应返回 ErrLoginRequired，实际 %v", err)
	}

	if _, err := svc.List(context.Background(), anonymousOwner("dev-1")); !errors.Is(err, ErrLoginRequired) {
		t.Errorf("未登录读取应返回 ErrLoginRequired，实际 %v", err)
	}
}

func TestRfqService_PutAndList(t *testing.T) {
	svc, _ := newRfqService(t, false)
	ctx := context.Background()
	owner := userOwner(100)

	if err := svc.Put(ctx, owner, dto.RfqLineReq{RfqProductID: 7, Quantity: 2}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	// 覆盖写
	if err := svc.Put(ctx, owner, dto.RfqLineReq{RfqProductID: 7, Quantity: 5}); err != nil {
		t.Fatalf("覆盖写失败: %v", err)
	}

	lines, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 5 {
		t.Errorf("应恰好一行且数量为 5: %+v", lines)
	}
}

func TestRfqService_QuantityZeroDeletes(t *testing.T) {
	svc, repo := newRfqService(t, false)
	ctx := context.Background()
	owner := userOwner(100)

	svc.Put(ctx, owner, dto.RfqLineReq{RfqProductID: 7, Quantity: 2})

	// quantity=0 即删除
	if err := svc.Put(ctx, owner, dto.RfqLineReq{RfqProductID: 7, Quantity: 0}); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	lines, _ := repo.ListByUser(ctx, 100)
	if len(lines) != 0 {
		t.Errorf("quantity=0 后行应消失: %+v", lines)
	}
}

func TestRfqService_RollbackOnUpstreamFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRfqRepository(db)
	ctx := context.Background()
	owner := userOwner(100)

	_, okClient := newUpstreamStub(t, nil)
	okSvc := NewRfqService(repo, okClient)
	okSvc.Put(ctx, owner, dto.RfqLineReq{RfqProductID: 7, Quantity: 2})

	badSvc := NewRfqService(repo, newFailingStub(t))
	if err := badSvc.Put(ctx, owner, dto.RfqLineReq{RfqProductID: 7, Quantity: 9}); !errors.Is(err, ErrCartSync) {
		t.Fatalf("远端失败应返回 ErrCartSync，实际 %v", err)
	}

	line, err := repo.GetByUserAndProduct(ctx, 100, 7)
	if err != nil {
		t.Fatalf("行查询失败: %v", err)
	}
	if line.Quantity != 2 {
		t.Errorf("应回滚到 2，实际 %d", line.Quantity)
	}
}
