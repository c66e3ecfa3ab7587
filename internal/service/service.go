package service

import (
	"go.uber.org/zap"

	"github.com/sayamjn/rely-gate-sub002/config"
	"github.com/sayamjn/rely-gate-sub002/internal/repository"
	"github.com/sayamjn/rely-gate-sub002/pkg/jwt"
	"github.com/sayamjn/rely-gate-sub002/pkg/qrtoken"
	"github.com/sayamjn/rely-gate-sub002/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Student      StudentService
	MealSettings MealSettingsService
	MealStatus   MealStatusService
	MealQR       MealQRService
	Export       ExportService
}

// NewService 创建 Service 聚合
// rdb 可为 nil：黑名单与核销快速路径降级，唯一约束仍兜底单次使用
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	qrMgr *qrtoken.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var blacklist TokenBlacklist
	var ledger RedemptionLedger
	if rdb != nil {
		blacklist = rdb
		ledger = rdb
	}

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Student:      NewStudentService(repo, logger),
		MealSettings: NewMealSettingsService(repo, logger),
		MealStatus:   NewMealStatusService(repo, logger),
		MealQR:       NewMealQRService(repo, qrMgr, ledger, logger),
		Export:       NewExportService(repo, logger),
	}
}
