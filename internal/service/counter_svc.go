package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const sessionKeyUnreadCount = "unread_count"

// CounterService 未读计数服务
// 固定间隔轮询远端，结果放会话层缓存供 UI 读取。
// 没有推送通道，轮询间隔之外不做额外退避，失败等下一轮。
type CounterService struct {
	session *SessionService
	storage *StorageService
	client  *resty.Client
}

// NewCounterService 创建计数服务
func NewCounterService(session *SessionService, storage *StorageService, client *resty.Client) *CounterService {
	return &CounterService{session: session, storage: storage, client: client}
}

// RefreshUnreadCount 拉取一次未读数并写入会话缓存
// 未登录时直接跳过 (未读数只对登录用户有意义)。
func (s *CounterService) RefreshUnreadCount(ctx context.Context) error {
	owner := s.session.Owner(ctx)
	if !owner.Authenticated() {
		return nil
	}

	var result struct {
		Count int `json:"count"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetAuthToken(owner.Token).
		Get("/notification/unread-count")
	if err != nil {
		return fmt.Errorf("网络错误: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("远端返回 %d", resp.StatusCode())
	}

	s.storage.PutSession(sessionKeyUnreadCount, strconv.Itoa(result.Count))
	return nil
}

// UnreadCount 读取缓存的未读数，没有时返回 0
func (s *CounterService) UnreadCount() int {
	raw, ok := s.storage.GetSession(sessionKeyUnreadCount)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
