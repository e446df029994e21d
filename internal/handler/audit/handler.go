package audit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/healthcare-api/internal/handler"
	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/audit"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
	"github.com/jwalitptl/healthcare-api/pkg/httputil"
)

const (
	entityName = "AuditLog"
	xlsxType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	service audit.AuditService
	now     func() time.Time
}

func NewHandler(service audit.AuditService) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/audit-logs")
	{
		logs.GET("", h.ListLogs)
		logs.GET("/entity-type/:type", h.GetEntityTypeLogs)
		logs.GET("/entity/:type/:id", h.GetEntityLogs)
		logs.GET("/history/:type/:id", h.GetEntityHistory)
		logs.GET("/action/:action", h.GetActionLogs)
		logs.GET("/date-range", h.GetDateRangeLogs)
		logs.GET("/export", h.ExportLogs)
	}
}

// ListLogs serves one page of entries. sort is "field" or "field,dir".
func (h *Handler) ListLogs(c *gin.Context) {
	page, err := handler.Pagination(c, entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.service.ListAll(c.Request.Context(), page, parseSort(c.Query("sort")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func parseSort(raw string) model.SortOrder {
	field, dir, _ := strings.Cut(raw, ",")
	return model.SortOrder{Field: strings.TrimSpace(field), Dir: strings.TrimSpace(dir)}
}

func (h *Handler) GetEntityTypeLogs(c *gin.Context) {
	h.respond(c)(h.service.ListByEntityType(c.Request.Context(), c.Param("type")))
}

func (h *Handler) GetEntityLogs(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respond(c)(h.service.ListByEntity(c.Request.Context(), c.Param("type"), id))
}

func (h *Handler) GetEntityHistory(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.respond(c)(h.service.EntityHistory(c.Request.Context(), c.Param("type"), id))
}

func (h *Handler) GetActionLogs(c *gin.Context) {
	h.respond(c)(h.service.ListByAction(c.Request.Context(), c.Param("action")))
}

func (h *Handler) GetDateRangeLogs(c *gin.Context) {
	start, err := handler.QueryTime(c, "start", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	end, err := handler.QueryTime(c, "end", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if start == nil || end == nil {
		httputil.RespondWithError(c, apperrors.Validation("start", "start and end are required", entityName))
		return
	}
	h.respond(c)(h.service.ListByDateRange(c.Request.Context(), *start, *end))
}

// ExportLogs streams the matching entries as an xlsx attachment.
func (h *Handler) ExportLogs(c *gin.Context) {
	filter := model.AuditFilter{
		EntityType: c.Query("entity_type"),
		Action:     model.AuditAction(c.Query("action")),
	}
	var err error
	if filter.Start, err = handler.QueryTime(c, "start", entityName); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if filter.End, err = handler.QueryTime(c, "end", entityName); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	data, err := h.service.Export(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("audit_logs_%s.xlsx", h.now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxType, data)
}

func (h *Handler) respond(c *gin.Context) func([]*model.AuditLog, error) {
	return func(logs []*model.AuditLog, err error) {
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, logs)
	}
}
