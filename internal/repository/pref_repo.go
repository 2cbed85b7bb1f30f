package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ultrasooq_session_v1/internal/model"
)

// ==================== 接口定义 ====================

// PrefRepository 本地持久化键值仓储接口
type PrefRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// ErrPrefNotFound key 不存在
var ErrPrefNotFound = errors.New("pref key not found")

// ==================== 仓储实现 ====================

type prefRepo struct {
	db *gorm.DB
}

// NewPrefRepository 创建偏好仓储
func NewPrefRepository(db *gorm.DB) PrefRepository {
	return &prefRepo{db: db}
}

func (r *prefRepo) Get(ctx context.Context, key string) (string, error) {
	var pref model.ClientPref
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPrefNotFound
		}
		return "", err
	}
	return pref.Value, nil
}

func (r *prefRepo) Put(ctx context.Context, key, value string) error {
	pref := model.ClientPref{Key: key, Value: value}
	// key 冲突时更新 value (upsert)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&pref).Error
}

func (r *prefRepo) Delete(ctx context.Context, key string) error {
	// 物理删除：软删行会占住唯一索引，导致后续 upsert 复活不了该 key
	return r.db.WithContext(ctx).
		Unscoped().
		Where("key = ?", key).
		Delete(&model.ClientPref{}).Error
}

func (r *prefRepo) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&model.ClientPref{}).
		Pluck("key", &keys).Error
	return keys, err
}
