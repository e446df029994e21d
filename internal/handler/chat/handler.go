package chat

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/healthcare-api/internal/handler"
	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/pkg/httputil"
	"github.com/jwalitptl/healthcare-api/pkg/validator"
)

const entityName = "Chat"

// Processor answers free-text queries.
type Processor interface {
	Process(ctx context.Context, req model.ChatRequest) model.ChatResponse
}

type Handler struct {
	processor Processor
	validate  *validator.Validator
}

func NewHandler(processor Processor, validate *validator.Validator) *Handler {
	return &Handler{processor: processor, validate: validate}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
}

func (h *Handler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := handler.BindJSON(c, &req, entityName); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.validate.Struct(req, entityName, validator.Messages{"query.notblank": "Query is required"}); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, h.processor.Process(c.Request.Context(), req))
}
