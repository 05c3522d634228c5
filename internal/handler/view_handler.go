package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/pkg/response"
)

type timetableViews interface {
	RoomWeek(ctx context.Context, room, date string) (*models.RoomWeekView, error)
	ClassTimetable(ctx context.Context, class string) (*models.ClassView, error)
	TeacherTimetable(ctx context.Context, teacher string) (*models.TeacherView, error)
}

// ViewHandler serves the derived room, class and teacher grids.
type ViewHandler struct {
	views timetableViews
}

// NewViewHandler constructs the handler.
func NewViewHandler(views timetableViews) *ViewHandler {
	return &ViewHandler{views: views}
}

// Room godoc
// @Summary Weekly grid of a room
// @Tags Views
// @Produce json
// @Param room path string true "Room id or label"
// @Param date query string false "Any date in the week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /views/rooms/{room} [get]
func (h *ViewHandler) Room(c *gin.Context) {
	view, err := h.views.RoomWeek(c.Request.Context(), c.Param("room"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Class godoc
// @Summary Weekly grid of a class
// @Tags Views
// @Produce json
// @Param class path string true "Class label, e.g. 3-1"
// @Success 200 {object} response.Envelope
// @Router /views/classes/{class} [get]
func (h *ViewHandler) Class(c *gin.Context) {
	view, err := h.views.ClassTimetable(c.Request.Context(), c.Param("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Teacher godoc
// @Summary Weekly grid of a roving teacher
// @Tags Views
// @Produce json
// @Param teacher path string true "Teacher label"
// @Success 200 {object} response.Envelope
// @Router /views/teachers/{teacher} [get]
func (h *ViewHandler) Teacher(c *gin.Context) {
	view, err := h.views.TeacherTimetable(c.Request.Context(), c.Param("teacher"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
