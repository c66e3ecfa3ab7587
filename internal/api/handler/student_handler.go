package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sayamjn/rely-gate-sub002/internal/dto"
	"github.com/sayamjn/rely-gate-sub002/internal/service"
	"github.com/sayamjn/rely-gate-sub002/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// CreateStudent 创建学生
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Create(c.Request.Context(), tenantID, adminID, &req)
	if err != nil {
		if errors.Is(err, service.ErrRegNoExists) {
			response.Conflict(c, 12001, "该学号已存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// GetStudent 查询学生详情
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.studentSvc.Get(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, 12002, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListStudents 分页查询学生
// GET /api/v1/students?page=1&page_size=20
func (h *StudentHandler) ListStudents(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), tenantID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// UpdateStudent 部分更新学生
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.studentSvc.Update(c.Request.Context(), tenantID, c.Param("id"), adminID, &req)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, 12002, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// DeleteStudent 删除学生（软删除）
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}
	adminID, ok := MustGetAdminID(c)
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), tenantID, c.Param("id"), adminID); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, 12002, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
