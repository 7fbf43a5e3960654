package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_management/internal/domain"
	"parking_management/internal/service"
)

type ParkingSessionHandler struct {
	sessionService *service.ParkingSessionService
}

func NewParkingSessionHandler(ps *service.ParkingSessionService) *ParkingSessionHandler {
	return &ParkingSessionHandler{sessionService: ps}
}

// POST /api/v1/parking-sessions
func (h *ParkingSessionHandler) Create(c *gin.Context) {
	var dto domain.ParkingSessionCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.sessionService.Create(c.Request.Context(), principal(c), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// POST /api/v1/parking-sessions/:id/finish
func (h *ParkingSessionHandler) Finish(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.sessionService.Finish(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /api/v1/parking-sessions/:id
func (h *ParkingSessionHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.sessionService.GetByID(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /api/v1/parking-sessions
func (h *ParkingSessionHandler) GetAll(c *gin.Context) {
	sessions, err := h.sessionService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/v1/spots/:id/parking-sessions
func (h *ParkingSessionHandler) GetBySpotID(c *gin.Context) {
	spotID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sessions, err := h.sessionService.GetBySpotID(c.Request.Context(), spotID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/v1/vehicles/:id/parking-sessions
func (h *ParkingSessionHandler) GetByVehicleID(c *gin.Context) {
	vehicleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sessions, err := h.sessionService.GetByVehicleID(c.Request.Context(), principal(c), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// DELETE /api/v1/parking-sessions/:id
func (h *ParkingSessionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.sessionService.Delete(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
