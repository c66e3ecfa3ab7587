package handler

import "github.com/sayamjn/rely-gate-sub002/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Student      *StudentHandler
	MealSettings *MealSettingsHandler
	MealStatus   *MealStatusHandler
	MealQR       *MealQRHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Student:      NewStudentHandler(svc.Student),
		MealSettings: NewMealSettingsHandler(svc.MealSettings),
		MealStatus:   NewMealStatusHandler(svc.MealStatus),
		MealQR:       NewMealQRHandler(svc.MealQR),
		Export:       NewExportHandler(svc.Export),
	}
}
