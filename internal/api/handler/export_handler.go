package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sayamjn/rely-gate-sub002/internal/service"
	"github.com/sayamjn/rely-gate-sub002/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportMealRecords 导出就餐台账
// GET /api/v1/export/meal-records?from=2026-03-01&to=2026-03-07
func (h *ExportHandler) ExportMealRecords(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if !validDate(from) || !validDate(to) {
		response.BadRequest(c, 10001, "from/to 必须为 YYYY-MM-DD 格式")
		return
	}
	if from > to {
		response.BadRequest(c, 10001, "from 不能晚于 to")
		return
	}

	buf, filename, err := h.exportSvc.ExportMealRecords(c.Request.Context(), tenantID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNoRecords):
			response.NotFound(c, 15001, "所选日期范围内无就餐记录")
		case errors.Is(err, service.ErrExportGenerateFail):
			response.InternalError(c)
		default:
			response.InternalError(c)
		}
		return
	}

	writeDownload(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportScheduleICS 导出本周供餐安排
// GET /api/v1/export/schedule.ics
func (h *ExportHandler) ExportScheduleICS(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportScheduleICS(c.Request.Context(), tenantID)
	if err != nil {
		response.InternalError(c)
		return
	}

	writeDownload(c, contentTypeICS, filename, buf.Bytes())
}

// ── 辅助函数 ──

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func writeDownload(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
