package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vincentnocera/residencyhours/internal/service"
	"github.com/vincentnocera/residencyhours/pkg/response"
	"github.com/vincentnocera/residencyhours/pkg/timeutil"
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

// ExportWeekExcel 导出某周工时表为 Excel
// GET /api/v1/exports/week.xlsx?week_start=2026-08-31[&user_id=xxx]
func (h *ExportHandler) ExportWeekExcel(c *gin.Context) {
	userID, weekStart, ok := h.exportParams(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeekExcel(c.Request.Context(), userID, weekStart)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportWeekICS 导出某周时间块为 iCalendar
// GET /api/v1/exports/week.ics?week_start=2026-08-31[&user_id=xxx]
func (h *ExportHandler) ExportWeekICS(c *gin.Context) {
	userID, weekStart, ok := h.exportParams(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeekICS(c.Request.Context(), userID, weekStart)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeICS, filename, buf.Bytes())
}

func (h *ExportHandler) exportParams(c *gin.Context) (string, time.Time, bool) {
	userID, ok := targetUserID(c)
	if !ok {
		return "", time.Time{}, false
	}

	weekStart, err := timeutil.ParseDate(c.Query("week_start"))
	if err != nil {
		response.BadRequest(c, 13001, "week_start 格式无效，应为 YYYY-MM-DD")
		return "", time.Time{}, false
	}
	return userID, weekStart, true
}

func writeDownload(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoSchedule):
		response.NotFound(c, 15001, "该周暂无工时记录")
	case errors.Is(err, service.ErrExportNoBlocks):
		response.BadRequest(c, 15002, "该周没有时间块")
	default:
		response.InternalError(c)
	}
}
