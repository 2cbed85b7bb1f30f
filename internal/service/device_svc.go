package service

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"ultrasooq_session_v1/internal/model"
)

// DeviceService 设备身份服务
// 为未登录访客签发并持久化一个不可猜测的伪匿名标识。
// 同一存储上下文内幂等：已有 id 直接复用，不过期、不联网。
type DeviceService struct {
	storage *StorageService

	// 持久化不可用时的进程内兜底 id，只在本次运行期有效
	mu       sync.Mutex
	memoryID string
}

// NewDeviceService 创建设备身份服务
func NewDeviceService(storage *StorageService) *DeviceService {
	return &DeviceService{storage: storage}
}

// GetOrCreateDeviceID 获取或生成设备 id
// 1. 持久化里有 → 直接返回
// 2. 没有 → 生成 uuid 并持久化
// 3. 持久化失败 → 降级为内存 id (只记日志，不向调用方报错)
func (s *DeviceService) GetOrCreateDeviceID(ctx context.Context) string {
	if id, ok := s.storage.GetDurable(ctx, model.PrefKeyDeviceID); ok && id != "" {
		return id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 双检：拿锁期间可能已经有别的调用生成过
	if id, ok := s.storage.GetDurable(ctx, model.PrefKeyDeviceID); ok && id != "" {
		return id
	}
	if s.memoryID != "" {
		return s.memoryID
	}

	id := uuid.NewString()
	if !s.storage.PutDurable(ctx, model.PrefKeyDeviceID, id) {
		// 存储被禁用/写满：id 只活在内存里，本页生命周期内有效
		log.Printf("[Device] 设备 id 持久化失败，降级为内存 id: %s", id)
		s.memoryID = id
	}
	return id
}
