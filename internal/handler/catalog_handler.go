package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/catalog"
	"github.com/noah-isme/classsync-api/internal/dto"
	"github.com/noah-isme/classsync-api/pkg/response"
)

// CatalogHandler serves the identifier catalog.
type CatalogHandler struct{}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Get godoc
// @Summary Rooms, days, periods, classes and roving teachers
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.CatalogResponse{
		Rooms:    catalog.Rooms(),
		Days:     catalog.Days(),
		Periods:  catalog.Periods(),
		Classes:  catalog.Classes(),
		Teachers: catalog.Teachers(),
	})
}
