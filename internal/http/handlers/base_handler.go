// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"opsgate/internal/modules/activity"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/modules/validation"
)

const msgNoGeofence = "cannot validate location for this checklist, contact administrator"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, checklist.ErrBadRequest),
		errors.Is(err, validation.ErrBadRequest),
		errors.Is(err, activity.ErrBadRequest),
		errors.Is(err, geofence.ErrInvalidLatitude),
		errors.Is(err, geofence.ErrInvalidLongitude),
		errors.Is(err, geofence.ErrInvalidRadius):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, checklist.ErrNotFound), errors.Is(err, activity.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, checklist.ErrNoGeofence):
		writeError(c, http.StatusConflict, msgNoGeofence)
	case errors.Is(err, activity.ErrGateClosed):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, activity.ErrPhotoRequired):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
}
