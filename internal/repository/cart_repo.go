package repository

import (
	"context"

	"gorm.io/gorm"

	"ultrasooq_session_v1/internal/model"
)

// ==================== 接口定义 ====================

// CartRepository 零售购物车行仓储接口
type CartRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, line *model.CartLine) error
	Update(ctx context.Context, line *model.CartLine) error
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error

	// 归属查询
	GetDeviceLine(ctx context.Context, deviceID string, productPriceID int64) (*model.CartLine, error)
	GetUserLine(ctx context.Context, userID int64, productPriceID int64) (*model.CartLine, error)
	ListByDevice(ctx context.Context, deviceID string) ([]model.CartLine, error)
	ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error)
	CountByDevice(ctx context.Context, deviceID string) (int64, error)

	// 事务
	WithTx(tx *gorm.DB) CartRepository
	Transaction(ctx context.Context, fn func(txRepo CartRepository) error) error
}

// ==================== 仓储实现 ====================

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Create(ctx context.Context, line *model.CartLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *cartRepo) Update(ctx context.Context, line *model.CartLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *cartRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.CartLine{}, id).Error
}

func (r *cartRepo) DeleteByUser(ctx context.Context, userID int64) error {
	// 物理删除：用户 id 是敏感字段，软删行也不允许留在持久化存储里
	return r.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}

func (r *cartRepo) GetDeviceLine(ctx context.Context, deviceID string, productPriceID int64) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND product_price_id = ?", deviceID, productPriceID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepo) GetUserLine(ctx context.Context, userID int64, productPriceID int64) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_price_id = ?", userID, productPriceID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepo) ListByDevice(ctx context.Context, deviceID string) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("added_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *cartRepo) CountByDevice(ctx context.Context, deviceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("device_id = ?", deviceID).
		Count(&count).Error
	return count, err
}

func (r *cartRepo) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepo{db: tx}
}

func (r *cartRepo) Transaction(ctx context.Context, fn func(txRepo CartRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
