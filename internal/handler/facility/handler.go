package facility

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/healthcare-api/internal/handler"
	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/facility"
	"github.com/jwalitptl/healthcare-api/internal/service/patient"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
	"github.com/jwalitptl/healthcare-api/pkg/httputil"
)

const (
	entityName       = model.AuditEntityFacility
	defaultThreshold = 50
)

type Handler struct {
	service  facility.FacilityService
	patients patient.PatientService
}

func NewHandler(service facility.FacilityService, patients patient.PatientService) *Handler {
	return &Handler{service: service, patients: patients}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	facilities := r.Group("/facilities")
	{
		facilities.GET("", h.ListFacilities)
		facilities.POST("", h.CreateFacility)
		facilities.GET("/patient-count", h.ListByPatientCount)
		facilities.GET("/:id", h.GetFacility)
		facilities.PUT("/:id", h.UpdateFacility)
		facilities.DELETE("/:id", h.DeleteFacility)
		facilities.GET("/:id/patients", h.ListFacilityPatients)
	}
}

func (h *Handler) ListFacilities(c *gin.Context) {
	page, err := handler.Pagination(c, entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), page, c.Query("name"), c.Query("type"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) GetFacility(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) CreateFacility(c *gin.Context) {
	var req model.FacilityInput
	if err := handler.BindJSON(c, &req, entityName); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	view, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, view)
}

func (h *Handler) UpdateFacility(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.FacilityInput
	if err := handler.BindJSON(c, &req, entityName); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	view, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) DeleteFacility(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "Facility deleted successfully"})
}

// ListByPatientCount serves facilities with more than ?min= patients.
func (h *Handler) ListByPatientCount(c *gin.Context) {
	threshold := int64(defaultThreshold)
	if raw := strings.TrimSpace(c.Query("min")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			httputil.RespondWithError(c, apperrors.Validation("min", "must be a non-negative integer", entityName))
			return
		}
		threshold = n
	}

	views, err := h.service.ListWithPatientCountAbove(c.Request.Context(), threshold)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, views)
}

func (h *Handler) ListFacilityPatients(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	page, err := handler.Pagination(c, model.AuditEntityPatient)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.patients.ListByFacility(c.Request.Context(), id, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}
