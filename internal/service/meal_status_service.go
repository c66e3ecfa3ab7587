package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/mealschedule"
	"github.com/sayamjn/rely-gate-sub002/internal/repository"
)

// MealStatusService 餐期状态查询业务接口
type MealStatusService interface {
	// CurrentStatus 当前活跃餐别与当日内下一餐
	CurrentStatus(ctx context.Context, tenantID string) (*dto.MealStatusResponse, error)
	// ValidateAction 校验一次预订或核销动作是否落在允许窗口内
	ValidateAction(ctx context.Context, tenantID string, req *dto.ValidateActionRequest) (*dto.ValidateActionResponse, error)
}

type mealStatusService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time // 测试注入固定时钟
}

// NewMealStatusService 创建 MealStatusService 实例
func NewMealStatusService(repo *repository.Repository, logger *zap.Logger) MealStatusService {
	return &mealStatusService{repo: repo, logger: logger, now: time.Now}
}

// loadWeek 读取租户周配置快照。
// 配置缺失时回落内置默认并以 isDefault=true 标记，系统不会因缺配置而失明；
// 只读路径不建行，引导建行归配置模块负责。
func loadWeek(ctx context.Context, repo *repository.Repository, logger *zap.Logger, tenantID string) (mealschedule.WeeklySchedule, bool, error) {
	settings, err := repo.MealSettings.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mealschedule.DefaultWeeklySchedule(), true, nil
		}
		logger.Error("查询餐期配置失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return mealschedule.WeeklySchedule{}, false, err
	}
	week := settings.Schedule.Week()
	return week, week == mealschedule.DefaultWeeklySchedule(), nil
}

// ────────────────────── CurrentStatus ──────────────────────

func (s *mealStatusService) CurrentStatus(ctx context.Context, tenantID string) (*dto.MealStatusResponse, error) {
	week, isDefault, err := loadWeek(ctx, s.repo, s.logger, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &dto.MealStatusResponse{
		CurrentMeal:       string(mealschedule.CurrentMealType(week, now)),
		IsDefaultSchedule: isDefault,
		ServerTime:        now.Format(time.RFC3339),
	}

	if next, ok := mealschedule.NextMealInfo(week, now); ok {
		resp.NextMeal = &dto.NextMealResponse{
			MealType:     string(next.Meal),
			ServingStart: next.ServingStart.String(),
			MinutesUntil: next.MinutesUntil,
		}
	}

	return resp, nil
}

// ────────────────────── ValidateAction ──────────────────────

func (s *mealStatusService) ValidateAction(ctx context.Context, tenantID string, req *dto.ValidateActionRequest) (*dto.ValidateActionResponse, error) {
	week, _, err := loadWeek(ctx, s.repo, s.logger, tenantID)
	if err != nil {
		return nil, err
	}

	action, err := mealschedule.ParseAction(req.Action)
	if err != nil {
		return &dto.ValidateActionResponse{IsAllowed: false, Message: "无效的动作类型"}, nil
	}
	meal, err := mealschedule.ParseMealType(req.MealType)
	if err != nil {
		return &dto.ValidateActionResponse{IsAllowed: false, Message: "无效的餐别"}, nil
	}

	result := mealschedule.ValidateAction(week, s.now(), action, meal)
	return &dto.ValidateActionResponse{IsAllowed: result.Allowed, Message: result.Message}, nil
}
