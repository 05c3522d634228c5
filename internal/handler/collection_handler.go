package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/models"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/response"
)

type snapshotHub interface {
	Current(ctx context.Context, collection models.Collection) (*models.Snapshot, error)
	Subscribe(ctx context.Context, collection models.Collection) (<-chan *models.Snapshot, error)
}

// CollectionHandler exposes full collection snapshots, once or as a live stream.
type CollectionHandler struct {
	hub       snapshotHub
	heartbeat time.Duration
}

// NewCollectionHandler constructs the handler. heartbeat defaults to 25s.
func NewCollectionHandler(hub snapshotHub, heartbeat time.Duration) *CollectionHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &CollectionHandler{hub: hub, heartbeat: heartbeat}
}

// Snapshot godoc
// @Summary Current content of a collection
// @Tags Collections
// @Produce json
// @Param collection path string true "fixedData, extraRes, classSubjects or teacherSchedules"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /collections/{collection} [get]
func (h *CollectionHandler) Snapshot(c *gin.Context) {
	collection, ok := models.ParseCollection(c.Param("collection"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown collection"))
		return
	}
	snapshot, err := h.hub.Current(c.Request.Context(), collection)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, map[string]interface{}{"records": snapshot.Len()})
}

// Stream godoc
// @Summary Live snapshots of a collection
// @Description Server-sent events. The first "snapshot" event carries the current content, later events follow every change.
// @Tags Collections
// @Produce text/event-stream
// @Param collection path string true "fixedData, extraRes, classSubjects or teacherSchedules"
// @Success 200 {string} string "event stream"
// @Router /collections/{collection}/stream [get]
func (h *CollectionHandler) Stream(c *gin.Context) {
	collection, ok := models.ParseCollection(c.Param("collection"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown collection"))
		return
	}
	ctx := c.Request.Context()
	updates, err := h.hub.Subscribe(ctx, collection)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snapshot, ok := <-updates:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{
				Id:    strconv.FormatUint(snapshot.Version, 10),
				Event: "snapshot",
				Data:  snapshot,
			})
			return true
		case now := <-ticker.C:
			c.Render(-1, sse.Event{Event: "heartbeat", Data: now.UTC().Format(time.RFC3339)})
			return true
		}
	})
}
