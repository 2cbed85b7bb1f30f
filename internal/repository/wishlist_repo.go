package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ultrasooq_session_v1/internal/model"
)

// ==================== 接口定义 ====================

// WishlistRepository 收藏夹仓储接口
type WishlistRepository interface {
	Add(ctx context.Context, entry *model.WishlistEntry) error
	Remove(ctx context.Context, userID, productID int64) error
	Exists(ctx context.Context, userID, productID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]model.WishlistEntry, error)
}

// ==================== 仓储实现 ====================

type wishlistRepo struct {
	db *gorm.DB
}

// NewWishlistRepository 创建收藏夹仓储
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepo{db: db}
}

func (r *wishlistRepo) Add(ctx context.Context, entry *model.WishlistEntry) error {
	// 重复收藏按幂等处理
	exists, err := r.Exists(ctx, entry.UserID, entry.ProductID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *wishlistRepo) Remove(ctx context.Context, userID, productID int64) error {
	// 物理删除：软删行会占住 (user, product) 唯一索引，阻塞再次收藏
	return r.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistEntry{}).Error
}

func (r *wishlistRepo) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var entry model.WishlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *wishlistRepo) ListByUser(ctx context.Context, userID int64) ([]model.WishlistEntry, error) {
	var entries []model.WishlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
