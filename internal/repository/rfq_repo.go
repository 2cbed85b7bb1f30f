package repository

import (
	"context"

	"gorm.io/gorm"

	"ultrasooq_session_v1/internal/model"
)

// ==================== 接口定义 ====================

// RfqRepository 询价单购物车仓储接口
type RfqRepository interface {
	Upsert(ctx context.Context, line *model.RfqCartLine) error
	GetByUserAndProduct(ctx context.Context, userID, rfqProductID int64) (*model.RfqCartLine, error)
	ListByUser(ctx context.Context, userID int64) ([]model.RfqCartLine, error)
	DeleteByUserAndProduct(ctx context.Context, userID, rfqProductID int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// ==================== 仓储实现 ====================

type rfqRepo struct {
	db *gorm.DB
}

// NewRfqRepository 创建询价单仓储
func NewRfqRepository(db *gorm.DB) RfqRepository {
	return &rfqRepo{db: db}
}

func (r *rfqRepo) Upsert(ctx context.Context, line *model.RfqCartLine) error {
	var existing model.RfqCartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND rfq_product_id = ?", line.UserID, line.RfqProductID).
		First(&existing).Error
	if err == nil {
		existing.Quantity = line.Quantity
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *rfqRepo) GetByUserAndProduct(ctx context.Context, userID, rfqProductID int64) (*model.RfqCartLine, error) {
	var line model.RfqCartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND rfq_product_id = ?", userID, rfqProductID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *rfqRepo) ListByUser(ctx context.Context, userID int64) ([]model.RfqCartLine, error) {
	var lines []model.RfqCartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *rfqRepo) DeleteByUserAndProduct(ctx context.Context, userID, rfqProductID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND rfq_product_id = ?", userID, rfqProductID).
		Delete(&model.RfqCartLine{}).Error
}

func (r *rfqRepo) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RfqCartLine{}).Error
}
