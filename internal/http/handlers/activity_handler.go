// README: Worker-facing handlers: checklist worklist and activity completion.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsgate/internal/http/middleware"
	"opsgate/internal/modules/activity"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

type ActivityHandler struct {
	checklists *checklist.Service
	activities *activity.Service
}

func NewActivityHandler(checklists *checklist.Service, activities *activity.Service) *ActivityHandler {
	return &ActivityHandler{checklists: checklists, activities: activities}
}

type worklistQuery struct {
	PlantID string   `form:"plantId"`
	Lat     *float64 `form:"lat" binding:"omitempty,latitude"`
	Lng     *float64 `form:"lng" binding:"omitempty,longitude"`
}

type worklistItem struct {
	checklist.Nearby
	CompletedActivityIDs []types.ID `json:"completedActivityIds"`
}

// Checklists lists the checklists assigned to the caller's role, nearest
// first when a position is supplied, with the activities already completed
// today. Admins see every checklist.
func (h *ActivityHandler) Checklists(c *gin.Context) {
	var q worklistQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	if (q.Lat == nil) != (q.Lng == nil) {
		writeError(c, http.StatusBadRequest, "lat and lng must be given together")
		return
	}

	ctx := c.Request.Context()
	var items []checklist.Nearby
	if q.Lat != nil {
		nearby, err := h.checklists.NearestFirst(ctx, types.ID(q.PlantID), geofence.GeoPoint{Lat: *q.Lat, Lng: *q.Lng})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		items = nearby
	} else {
		list, err := h.checklists.List(ctx, types.ID(q.PlantID))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		for _, cl := range list {
			items = append(items, checklist.Nearby{Checklist: cl})
		}
	}

	uid := types.ID(middleware.CallerUID(c))
	role := middleware.CallerRole(c)
	out := make([]worklistItem, 0, len(items))
	for _, it := range items {
		if role != middleware.RoleAdmin && !it.Checklist.AssignedTo(role) {
			continue
		}
		done, err := h.activities.CompletedToday(ctx, it.Checklist.ID, uid)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if done == nil {
			done = []types.ID{}
		}
		out = append(out, worklistItem{Nearby: it, CompletedActivityIDs: done})
	}
	writeJSON(c, http.StatusOK, map[string]any{"checklists": out})
}

type completeReq struct {
	ChecklistID string   `json:"checklistId" binding:"required"`
	ActivityID  string   `json:"activityId" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
	Photo       string   `json:"photo"`
}

func (h *ActivityHandler) Complete(c *gin.Context) {
	var req completeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		writeError(c, http.StatusBadRequest, "latitude and longitude must be given together")
		return
	}
	cmd := activity.CompleteCommand{
		ChecklistID: types.ID(req.ChecklistID),
		ActivityID:  types.ID(req.ActivityID),
		UserID:      types.ID(middleware.CallerUID(c)),
		Photo:       req.Photo,
	}
	if req.Latitude != nil {
		cmd.Point = &geofence.GeoPoint{Lat: *req.Latitude, Lng: *req.Longitude}
	}
	completion, err := h.activities.Complete(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, completion)
}
