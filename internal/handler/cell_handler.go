package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/dto"
	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/response"
)

type cellStore interface {
	UpsertOrClear(ctx context.Context, collection models.Collection, key slotkey.SlotKey, value string) error
	DeleteCell(ctx context.Context, collection models.Collection, key slotkey.SlotKey) error
}

// CellHandler writes weekly cells of fixedData, classSubjects and teacherSchedules.
// The collection is bound per route.
type CellHandler struct {
	store cellStore
}

// NewCellHandler constructs the handler.
func NewCellHandler(store cellStore) *CellHandler {
	return &CellHandler{store: store}
}

// Put godoc
// @Summary Set or clear a weekly cell
// @Description Key is resource-day-period, e.g. gangdang-mon-1 or 3-1-tue-lunch. A blank value removes the cell.
// @Tags Cells
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Slot key"
// @Param payload body dto.CellRequest true "Cell value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fixed/{key} [put]
// @Router /subjects/{key} [put]
// @Router /teacher-schedules/{key} [put]
func (h *CellHandler) Put(collection models.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := slotkey.ParseSlotKey(c.Param("key"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid slot key"))
			return
		}
		var req dto.CellRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cell payload"))
			return
		}
		if err := h.store.UpsertOrClear(c.Request.Context(), collection, key, req.Value); err != nil {
			response.Error(c, err)
			return
		}
		value := strings.TrimSpace(req.Value)
		response.JSON(c, http.StatusOK, dto.CellResponse{
			Collection: string(collection),
			Key:        key.String(),
			Value:      value,
			Cleared:    value == "",
		})
	}
}

// Delete godoc
// @Summary Remove a weekly cell
// @Description Removing an absent cell succeeds.
// @Tags Cells
// @Security BearerAuth
// @Param key path string true "Slot key"
// @Success 204
// @Router /fixed/{key} [delete]
// @Router /subjects/{key} [delete]
// @Router /teacher-schedules/{key} [delete]
func (h *CellHandler) Delete(collection models.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := slotkey.ParseSlotKey(c.Param("key"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid slot key"))
			return
		}
		if err := h.store.DeleteCell(c.Request.Context(), collection, key); err != nil {
			response.Error(c, err)
			return
		}
		response.NoContent(c)
	}
}
