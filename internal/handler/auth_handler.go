package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/pkg/response"
)

type anonymousSigner interface {
	SignInAnonymously() (*models.AnonymousSession, error)
}

// AuthHandler issues anonymous staff sessions.
type AuthHandler struct {
	service anonymousSigner
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service anonymousSigner) *AuthHandler {
	return &AuthHandler{service: service}
}

// SignInAnonymous godoc
// @Summary Start an anonymous session
// @Description Issues a bearer token required by every write endpoint.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/anonymous [post]
func (h *AuthHandler) SignInAnonymous(c *gin.Context) {
	session, err := h.service.SignInAnonymously()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}
