package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/go-resty/resty/v2"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/model"
)

// SessionService 会话编排器
// 持有会话级状态 (画像/令牌)，生命周期：启动时初始化、登出时重置。
// 登录瞬间负责把匿名态的设备购物车合并进用户购物车，
// 并保证合并 (或确认无需合并) 先于第一次登录态购物车渲染完成。
type SessionService struct {
	deviceSvc *DeviceService
	cartSvc   *CartService
	rfqSvc    *RfqService
	storage   *StorageService
	client    *resty.Client

	mu      sync.RWMutex
	profile *model.Profile
	token   string // 令牌属于敏感字段，只在内存持有
}

// NewSessionService 创建会话服务
func NewSessionService(deviceSvc *DeviceService, cartSvc *CartService, rfqSvc *RfqService, storage *StorageService, client *resty.Client) *SessionService {
	return &SessionService{
		deviceSvc: deviceSvc,
		cartSvc:   cartSvc,
		rfqSvc:    rfqSvc,
		storage:   storage,
		client:    client,
	}
}

// Boot 启动初始化：确保设备 id 就位
func (s *SessionService) Boot(ctx context.Context) string {
	return s.deviceSvc.GetOrCreateDeviceID(ctx)
}

// ==================== 登录 / 登出 ====================

// Login 令牌到位后的会话切换
// 1. 拉取新鲜账户画像 (status + permissions)
// 2. 等待设备车合并完成 (失败只降级，不阻塞登录)
// 3. 切入登录态
func (s *SessionService) Login(ctx context.Context, token string, userID int64) (*model.Profile, error) {
	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("账户画像拉取失败: %w", err)
	}
	if profile.UserID == 0 {
		profile.UserID = userID
	}

	// 合并必须发生在第一次登录态购物车读取之前，这里同步等它完成。
	// 合并失败的结果是拆分购物车，属于可接受的降级，不能让登录失败。
	deviceID := s.deviceSvc.GetOrCreateDeviceID(ctx)
	if err := s.cartSvc.MergeDeviceCart(ctx, deviceID, profile.UserID, token); err != nil {
		log.Printf("[Session] 设备车合并失败 (登录继续): %v", err)
	}

	s.mu.Lock()
	s.profile = profile
	s.token = token
	s.mu.Unlock()

	log.Printf("[Session] 用户 %d 登录，角色 %s 状态 %s", profile.UserID, profile.TradeRole, profile.EffectiveStatus())
	return profile, nil
}

// Logout 登出重置
// 会话级存储全部清空；设备 id 是非敏感持久化字段，保留。
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	userID := int64(0)
	if s.profile != nil {
		userID = s.profile.UserID
	}
	s.profile = nil
	s.token = ""
	s.mu.Unlock()

	s.storage.ClearSession()
	if userID != 0 {
		// 用户 id 是敏感字段，带它的行不允许在登出后留在持久化存储里
		s.cartSvc.ClearUser(ctx, userID)
		s.rfqSvc.ClearUser(ctx, userID)
	}
	log.Printf("[Session] 会话已重置 (user=%d)", userID)
}

// ==================== 会话状态读取 ====================

// Owner 当前会话的购物车归属人
func (s *SessionService) Owner(ctx context.Context) CartOwner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile != nil {
		return CartOwner{UserID: s.profile.UserID, Token: s.token}
	}
	return CartOwner{DeviceID: s.deviceSvc.GetOrCreateDeviceID(ctx)}
}

// Profile 当前画像 (未登录为 nil)
func (s *SessionService) Profile() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Gate 基于当前画像的能力闸 (画像未加载时自动落到 WAITING)
func (s *SessionService) Gate() *AccessGate {
	return NewAccessGate(s.Profile())
}

// Resolver 基于当前画像的权限解析器
func (s *SessionService) Resolver() *PermissionResolver {
	return NewPermissionResolver(s.Profile())
}

// ==================== 远端调用 ====================

// fetchProfile 拉取账户画像，边界上强校验
func (s *SessionService) fetchProfile(ctx context.Context, token string) (*model.Profile, error) {
	var result dto.UpstreamProfileResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetAuthToken(token).
		Get("/identity/me")
	if err != nil {
		return nil, fmt.Errorf("网络错误: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("远端返回 %d", resp.StatusCode())
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &model.Profile{
		UserID:       result.UserID,
		TradeRole:    result.TradeRole,
		Status:       model.AccountStatus(result.Status),
		MemberStatus: model.AccountStatus(result.MemberStatus),
		Permissions:  result.Permissions,
	}, nil
}
