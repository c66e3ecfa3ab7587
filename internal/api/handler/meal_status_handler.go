package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/service"
	"github.com/sayamjn/rely-gate-sub002/pkg/response"
)

// MealStatusHandler 餐期状态模块 HTTP 处理器
type MealStatusHandler struct {
	statusSvc service.MealStatusService
}

// NewMealStatusHandler 创建 MealStatusHandler
func NewMealStatusHandler(statusSvc service.MealStatusService) *MealStatusHandler {
	return &MealStatusHandler{statusSvc: statusSvc}
}

// GetStatus 查询当前餐期状态
// GET /api/v1/meal/status
func (h *MealStatusHandler) GetStatus(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.statusSvc.CurrentStatus(c.Request.Context(), tenantID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ValidateAction 校验预订或核销动作
// POST /api/v1/meal/validate
func (h *MealStatusHandler) ValidateAction(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var req dto.ValidateActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.statusSvc.ValidateAction(c.Request.Context(), tenantID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
