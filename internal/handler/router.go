package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/models"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth         *AuthHandler
	Catalog      *CatalogHandler
	Collections  *CollectionHandler
	Cells        *CellHandler
	Reservations *ReservationHandler
	Views        *ViewHandler
	Reports      *ReportHandler
	Admin        *AdminHandler
	Assistant    *AssistantHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes mounts the probes at the root and the API under prefix.
// Reads are public but identify the caller when a token is sent; every write passes through requireAuth.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, identify, requireAuth gin.HandlerFunc) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	if identify != nil {
		api.Use(identify)
	}
	api.POST("/auth/anonymous", h.Auth.SignInAnonymous)
	api.GET("/catalog", h.Catalog.Get)

	api.GET("/collections/:collection", h.Collections.Snapshot)
	api.GET("/collections/:collection/stream", h.Collections.Stream)

	api.GET("/reservations", h.Reservations.List)
	api.GET("/views/rooms/:room", h.Views.Room)
	api.GET("/views/classes/:class", h.Views.Class)
	api.GET("/views/teachers/:teacher", h.Views.Teacher)
	api.GET("/reports/timetable", h.Reports.Timetable)

	write := api.Group("")
	write.Use(requireAuth)

	cells := map[string]models.Collection{
		"/fixed":             models.CollectionFixed,
		"/subjects":          models.CollectionSubjects,
		"/teacher-schedules": models.CollectionTeacherSchedules,
	}
	for path, collection := range cells {
		write.PUT(path+"/:key", h.Cells.Put(collection))
		write.DELETE(path+"/:key", h.Cells.Delete(collection))
	}

	write.POST("/reservations", h.Reservations.Create)
	write.DELETE("/reservations/:id", h.Reservations.Cancel)

	write.POST("/admin/import", h.Admin.Import)
	write.POST("/admin/reset", h.Admin.Reset)

	write.POST("/assistant/generate", h.Assistant.Generate)
	write.POST("/assistant/optimize", h.Assistant.Optimize)
}
