// README: Admin checklist handlers: CRUD, clearing a geofence, and the attempt log.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/validation"
	"opsgate/internal/types"
)

type ChecklistHandler struct {
	checklists *checklist.Service
	validation *validation.Service
}

func NewChecklistHandler(checklists *checklist.Service, attempts *validation.Service) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists, validation: attempts}
}

type locationReq struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

type activityReq struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	RequiresPhoto bool   `json:"requiresPhoto"`
}

type checklistReq struct {
	PlantID          string        `json:"plantId"`
	Name             string        `json:"name"`
	Lane             string        `json:"lane"`
	Area             string        `json:"area"`
	Role             string        `json:"role"`
	RequiresLocation bool          `json:"requiresLocation"`
	Location         *locationReq  `json:"location"`
	Activities       []activityReq `json:"activities"`
}

func (r checklistReq) command() checklist.Command {
	cmd := checklist.Command{
		PlantID:          types.ID(r.PlantID),
		Name:             r.Name,
		Lane:             r.Lane,
		Area:             r.Area,
		Role:             r.Role,
		RequiresLocation: r.RequiresLocation,
	}
	if r.Location != nil {
		cmd.Location = &checklist.Location{
			Address:   r.Location.Address,
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
			Radius:    r.Location.Radius,
		}
	}
	for _, a := range r.Activities {
		cmd.Activities = append(cmd.Activities, checklist.Activity{
			ID:            types.ID(a.ID),
			Name:          a.Name,
			RequiresPhoto: a.RequiresPhoto,
		})
	}
	return cmd
}

func (h *ChecklistHandler) List(c *gin.Context) {
	list, err := h.checklists.List(c.Request.Context(), types.ID(c.Query("plantId")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if list == nil {
		list = []checklist.Checklist{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"checklists": list})
}

func (h *ChecklistHandler) Get(c *gin.Context) {
	cl, err := h.checklists.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, cl)
}

func (h *ChecklistHandler) Create(c *gin.Context) {
	var req checklistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cl, err := h.checklists.Create(c.Request.Context(), req.command())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, cl)
}

func (h *ChecklistHandler) Update(c *gin.Context) {
	var req checklistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cl, err := h.checklists.Update(c.Request.Context(), types.ID(c.Param("id")), req.command())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, cl)
}

func (h *ChecklistHandler) Delete(c *gin.Context) {
	if err := h.checklists.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearLocation removes the geofence so the checklist no longer requires a
// location check.
func (h *ChecklistHandler) ClearLocation(c *gin.Context) {
	cl, err := h.checklists.ClearLocation(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, cl)
}

func (h *ChecklistHandler) Attempts(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	attempts, err := h.validation.History(c.Request.Context(), types.ID(c.Param("id")), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if attempts == nil {
		attempts = []validation.Attempt{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"attempts": attempts})
}
