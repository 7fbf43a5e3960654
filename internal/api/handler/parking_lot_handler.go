package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_management/internal/domain"
	"parking_management/internal/service"
)

type ParkingLotHandler struct {
	lotService *service.ParkingLotService
}

func NewParkingLotHandler(ls *service.ParkingLotService) *ParkingLotHandler {
	return &ParkingLotHandler{lotService: ls}
}

// POST /api/v1/parking-lots
func (h *ParkingLotHandler) Create(c *gin.Context) {
	var dto domain.ParkingLotCreateUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lot, err := h.lotService.Create(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// GET /api/v1/parking-lots/:id
func (h *ParkingLotHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lot, err := h.lotService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// GET /api/v1/parking-lots
func (h *ParkingLotHandler) GetAll(c *gin.Context) {
	lots, err := h.lotService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// PUT /api/v1/parking-lots/:id
func (h *ParkingLotHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.ParkingLotCreateUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lot, err := h.lotService.Update(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// PUT /api/v1/parking-lots/:id/status
func (h *ParkingLotHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.ParkingLotStatusUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lot, err := h.lotService.ChangeStatus(c.Request.Context(), id, dto.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// DELETE /api/v1/parking-lots/:id
func (h *ParkingLotHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.lotService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
