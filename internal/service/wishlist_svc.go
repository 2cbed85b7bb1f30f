package service

import (
	"context"
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"

	"ultrasooq_session_v1/internal/model"
	"ultrasooq_session_v1/internal/repository"
)

// WishlistService 收藏夹服务，仅登录态
type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	client       *resty.Client
}

// NewWishlistService 创建收藏夹服务
func NewWishlistService(wishlistRepo repository.WishlistRepository, client *resty.Client) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, client: client}
}

// Toggle 收藏/取消收藏，返回操作后的收藏状态
func (s *WishlistService) Toggle(ctx context.Context, owner CartOwner, productID int64) (bool, error) {
	if !owner.Authenticated() {
		return false, ErrLoginRequired
	}

	exists, err := s.wishlistRepo.Exists(ctx, owner.UserID, productID)
	if err != nil {
		return false, fmt.Errorf("收藏状态查询失败: %w", err)
	}

	// 1. 本地乐观写入
	if exists {
		if err := s.wishlistRepo.Remove(ctx, owner.UserID, productID); err != nil {
			return true, fmt.Errorf("本地删除失败: %w", err)
		}
	} else {
		entry := &model.WishlistEntry{UserID: owner.UserID, ProductID: productID}
		if err := s.wishlistRepo.Add(ctx, entry); err != nil {
			return false, fmt.Errorf("本地写入失败: %w", err)
		}
	}

	// 2. 远端确认，失败回滚到原状态
	if err := s.remoteToggle(ctx, owner.Token, productID, !exists); err != nil {
		if exists {
			_ = s.wishlistRepo.Add(ctx, &model.WishlistEntry{UserID: owner.UserID, ProductID: productID})
		} else {
			_ = s.wishlistRepo.Remove(ctx, owner.UserID, productID)
		}
		log.Printf("[Wishlist] 远端同步失败已回滚: %v", err)
		return exists, ErrCartSync
	}
	return !exists, nil
}

// List 列出当前用户的收藏
func (s *WishlistService) List(ctx context.Context, owner CartOwner) ([]model.WishlistEntry, error) {
	if !owner.Authenticated() {
		return nil, ErrLoginRequired
	}
	return s.wishlistRepo.ListByUser(ctx, owner.UserID)
}

func (s *WishlistService) remoteToggle(ctx context.Context, token string, productID int64, wanted bool) error {
	var upstream upstreamWishlistResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&upstream).
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"productId": productID,
			"wanted":    wanted,
		}).
		Post("/wishlist/toggle")
	if err != nil {
		return fmt.Errorf("网络错误: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("远端返回 %d", resp.StatusCode())
	}
	return nil
}

type upstreamWishlistResp struct {
	Status string `json:"status"`
}
