package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"ultrasooq_session_v1/internal/model"
	"ultrasooq_session_v1/internal/repository"
	"ultrasooq_session_v1/pkg/utils"
)

// ==================== 敏感性分级 ====================

// Sensitivity 字段敏感级别
type Sensitivity int

const (
	NonSensitive Sensitivity = 0 // 可写入跨重启存活的持久化存储
	Sensitive    Sensitivity = 1 // 只允许进程内存 / 会话级存储
)

// sensitiveKeywords 敏感字段关键词黑名单
// 命中任意一个即判为 Sensitive。覆盖：令牌、姓名、邮箱、电话、
// 街道地址、支付信息、交易明细、内部账户/用户 id。
var sensitiveKeywords = []string{
	"token",
	"password",
	"secret",
	"first_name",
	"last_name",
	"full_name",
	"email",
	"phone",
	"address",
	"payment",
	"card",
	"transaction",
	"account_id",
	"user_id",
	"member_id",
}

// ClassifyKey 判断一个存储 key 的敏感级别
func ClassifyKey(key string) Sensitivity {
	k := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(k, kw) {
			return Sensitive
		}
	}
	return NonSensitive
}

// ==================== 存储服务 ====================

// StorageService 分级存储服务
// 三层：durable (跨重启存活，sqlite) / session (会话级内存，登出清空) / 降级内存。
// durable 层不可用或写失败时，该 key 在本次会话内降级为内存存储，静默处理。
type StorageService struct {
	prefRepo repository.PrefRepository // 为 nil 时整体降级 (对应非浏览器执行环境)
	session  *utils.SessionCache

	// durable 写失败后的内存兜底
	fallback sync.Map
	degraded bool
	mu       sync.Mutex
}

// NewStorageService 创建存储服务
// prefRepo 传 nil 表示底层持久化不可用，所有 durable 操作降级为 no-op。
func NewStorageService(prefRepo repository.PrefRepository) *StorageService {
	return &StorageService{
		prefRepo: prefRepo,
		session:  utils.NewSessionCache(),
	}
}

// Degrade 显式进入降级模式 (底层存储不跨重启存活时由启动流程调用)
// 之后所有 durable 写都落到进程内存并返回 false。
func (s *StorageService) Degrade() {
	s.markDegraded()
}

// ==================== Durable 层 ====================

// PutDurable 写入持久化存储
// 敏感 key 直接拒绝并告警；写失败时降级为内存，返回 false 但不报错。
func (s *StorageService) PutDurable(ctx context.Context, key, value string) bool {
	if ClassifyKey(key) == Sensitive {
		// 策略红线：敏感字段永不落盘
		log.Printf("[Storage] 拒绝持久化敏感 key: %s", key)
		return false
	}

	if s.prefRepo == nil || s.isDegraded() {
		s.fallback.Store(key, value)
		return false
	}

	if err := s.prefRepo.Put(ctx, key, value); err != nil {
		// 配额满 / 存储被禁用等场景：吞掉错误，本会话内转内存
		log.Printf("[Storage] 持久化写入失败，降级为内存模式: %v", err)
		s.markDegraded()
		s.fallback.Store(key, value)
		return false
	}
	return true
}

// GetDurable 读取持久化存储，不存在返回 ("", false)
func (s *StorageService) GetDurable(ctx context.Context, key string) (string, bool) {
	if v, ok := s.fallback.Load(key); ok {
		return v.(string), true
	}
	if s.prefRepo == nil {
		return "", false
	}

	value, err := s.prefRepo.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return value, true
}

// DeleteDurable 删除持久化 key
func (s *StorageService) DeleteDurable(ctx context.Context, key string) {
	s.fallback.Delete(key)
	if s.prefRepo == nil {
		return
	}
	if err := s.prefRepo.Delete(ctx, key); err != nil {
		log.Printf("[Storage] 持久化删除失败: %v", err)
	}
}

// ==================== Session 层 ====================

// PutSession 写入会话级存储 (登出 / 会话结束即清空)
func (s *StorageService) PutSession(key, value string) {
	s.session.Set(key, value)
}

// GetSession 读取会话级存储
func (s *StorageService) GetSession(key string) (string, bool) {
	return s.session.Get(key)
}

// ClearSession 清空会话级存储
func (s *StorageService) ClearSession() {
	s.session.Clear()
}

// ==================== 钱包快照 ====================

// WalletSnapshot 钱包展示快照
// OwnerUserID 属于内部用户 id，投影时必须剥掉。
type WalletSnapshot struct {
	WalletID    int64   `json:"wallet_id"`
	Balance     float64 `json:"balance"`
	Status      string  `json:"status"`
	OwnerUserID int64   `json:"-"`
}

const sessionKeyWallet = "wallet_snapshot"

// PutWalletSnapshot 将钱包快照写入会话层
// 显式白名单投影：只有 id / 余额 / 状态三个字段会被序列化。
func (s *StorageService) PutWalletSnapshot(w WalletSnapshot) {
	projection := map[string]interface{}{
		"wallet_id": w.WalletID,
		"balance":   w.Balance,
		"status":    w.Status,
	}
	raw, err := json.Marshal(projection)
	if err != nil {
		log.Printf("[Storage] 钱包快照序列化失败: %v", err)
		return
	}
	s.session.Set(sessionKeyWallet, string(raw))
}

// GetWalletSnapshot 读取会话层钱包快照
func (s *StorageService) GetWalletSnapshot() (string, bool) {
	return s.session.Get(sessionKeyWallet)
}

// ==================== 购物车持久化投影 ====================

// CartLineProjection 购物车行的持久化白名单投影
// 只有商品/价格 id 与数量允许落盘，归属人信息和变体明细都不进快照。
type CartLineProjection struct {
	ProductID      int64 `json:"product_id"`
	ProductPriceID int64 `json:"product_price_id"`
	Quantity       int   `json:"quantity"`
}

// ProjectCartLines 生成购物车行的白名单投影
func ProjectCartLines(lines []model.CartLine) []CartLineProjection {
	out := make([]CartLineProjection, 0, len(lines))
	for _, l := range lines {
		out = append(out, CartLineProjection{
			ProductID:      l.ProductID,
			ProductPriceID: l.ProductPriceID,
			Quantity:       l.Quantity,
		})
	}
	return out
}

// ==================== 内部辅助 ====================

func (s *StorageService) isDegraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *StorageService) markDegraded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degraded = true
}
