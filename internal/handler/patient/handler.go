package patient

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/healthcare-api/internal/handler"
	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/patient"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
	"github.com/jwalitptl/healthcare-api/pkg/httputil"
)

const entityName = model.AuditEntityPatient

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	page, err := handler.Pagination(c, entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filters := model.PatientFilters{
		Search: c.Query("search"),
		Gender: c.Query("gender"),
	}
	if raw := strings.TrimSpace(c.Query("dob")); raw != "" {
		dob, err := model.ParseDate(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation("dob", "must be a date in YYYY-MM-DD format", entityName))
			return
		}
		filters.DateOfBirth = &dob.Time
	}

	result, err := h.service.List(c.Request.Context(), page, filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) GetPatient(c *gin.Context) {
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

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.PatientInput
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

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.PatientInput
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

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := handler.ParseID(c, "id", entityName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "Patient deleted successfully"})
}
