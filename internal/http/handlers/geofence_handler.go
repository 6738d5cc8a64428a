// README: Authoritative geofence validation endpoint.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsgate/internal/http/middleware"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/modules/validation"
	"opsgate/internal/types"
)

type GeofenceHandler struct {
	validation *validation.Service
}

func NewGeofenceHandler(svc *validation.Service) *GeofenceHandler {
	return &GeofenceHandler{validation: svc}
}

type validateReq struct {
	ChecklistID string   `json:"checklistId" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"required,latitude"`
	Longitude   *float64 `json:"longitude" binding:"required,longitude"`
	Accuracy    *float64 `json:"accuracy" binding:"omitempty,gte=0"`
}

type validateResp struct {
	Valid            bool     `json:"valid"`
	DistanceMeters   *float64 `json:"distanceMeters,omitempty"`
	RequiresLocation bool     `json:"requiresLocation"`
}

func (h *GeofenceHandler) Validate(c *gin.Context) {
	var req validateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	verdict, err := h.validation.Validate(c.Request.Context(), validation.Request{
		ChecklistID:    types.ID(req.ChecklistID),
		UserID:         types.ID(middleware.CallerUID(c)),
		Point:          geofence.GeoPoint{Lat: *req.Latitude, Lng: *req.Longitude},
		AccuracyMeters: req.Accuracy,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	resp := validateResp{Valid: verdict.Valid, RequiresLocation: verdict.RequiresLocation}
	if verdict.RequiresLocation {
		d := verdict.DistanceMeters
		resp.DistanceMeters = &d
	}
	writeJSON(c, http.StatusOK, resp)
}
