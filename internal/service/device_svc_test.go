package service

import (
	"context"
	"testing"

	"ultrasooq_session_v1/internal/repository"
)

// ==================== 单元测试 ====================

func TestDeviceService_GetOrCreate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	storage := NewStorageService(repository.NewPrefRepository(db))
	svc := NewDeviceService(storage)
	ctx := context.Background()

	first := svc.GetOrCreateDeviceID(ctx)
	if first == "" {
		t.Fatal("首次调用应生成设备 id")
	}

	second := svc.GetOrCreateDeviceID(ctx)
	if second != first {
		t.Errorf("同一存储上下文应返回同一 id: %s != %s", second, first)
	}
}

func TestDeviceService_StorageUnavailable_FallsBackToMemory(t *testing.T) {
	// prefRepo 传 nil 模拟持久化整体不可用
	storage := NewStorageService(nil)
	svc := NewDeviceService(storage)
	ctx := context.Background()

	id := svc.GetOrCreateDeviceID(ctx)
	if id == "" {
		t.Fatal("存储不可用时也必须给出内存 id")
	}

	// 同一进程内保持稳定
	if again := svc.GetOrCreateDeviceID(ctx); again != id {
		t.Errorf("内存 id 在本次运行期内应稳定: %s != %s", again, id)
	}
}

func TestDeviceService_DistinctStores_DistinctIDs(t *testing.T) {
	ctx := context.Background()

	a := NewDeviceService(NewStorageService(repository.NewPrefRepository(setupTestDB(t))))
	b := NewDeviceService(NewStorageService(repository.NewPrefRepository(setupTestDB(t))))

	if a.GetOrCreateDeviceID(ctx) == b.GetOrCreateDeviceID(ctx) {
		t.Error("不同存储上下文不应产出相同设备 id")
	}
}
