// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"opsgate/internal/http/handlers"
	"opsgate/internal/http/middleware"
	"opsgate/internal/infra"
	"opsgate/internal/modules/activity"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/validation"
)

type RouterDeps struct {
	Verifier   infra.TokenVerifier
	Checklists *checklist.Service
	Validation *validation.Service
	Activities *activity.Service
	Log        logrus.FieldLogger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(deps.Log), middleware.Recovery(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	geofenceHandler := handlers.NewGeofenceHandler(deps.Validation)
	api.POST("/geofence/validate", geofenceHandler.Validate)

	checklistHandler := handlers.NewChecklistHandler(deps.Checklists, deps.Validation)
	admin := middleware.RequireRole(middleware.RoleAdmin)
	api.GET("/checklists", admin, checklistHandler.List)
	api.GET("/checklists/:id", checklistHandler.Get)
	api.POST("/checklists", admin, checklistHandler.Create)
	api.PUT("/checklists/:id", admin, checklistHandler.Update)
	api.DELETE("/checklists/:id", admin, checklistHandler.Delete)
	api.DELETE("/checklists/:id/location", admin, checklistHandler.ClearLocation)
	api.GET("/checklists/:id/attempts", admin, checklistHandler.Attempts)

	activityHandler := handlers.NewActivityHandler(deps.Checklists, deps.Activities)
	api.GET("/activities/checklists", activityHandler.Checklists)
	api.POST("/activities/complete", activityHandler.Complete)

	return r
}
