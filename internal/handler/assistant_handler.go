package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/service"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/response"
	"github.com/noah-isme/classsync-api/pkg/textgen"
)

type timetableAssistant interface {
	Generate(ctx context.Context, req service.GenerateRequest) (*textgen.TimetableProposal, error)
	Optimize(ctx context.Context) (*textgen.OptimizedTimetable, error)
}

// AssistantHandler proxies the timetable proposal and optimisation flows.
type AssistantHandler struct {
	assistant timetableAssistant
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(assistant timetableAssistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Generate godoc
// @Summary Propose a timetable
// @Tags Assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.GenerateRequest false "Extra constraints"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /assistant/generate [post]
func (h *AssistantHandler) Generate(c *gin.Context) {
	var req service.GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}
	out, err := h.assistant.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

// Optimize godoc
// @Summary Review the current timetable
// @Tags Assistant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /assistant/optimize [post]
func (h *AssistantHandler) Optimize(c *gin.Context) {
	out, err := h.assistant.Optimize(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}
