package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_management/internal/domain"
	"parking_management/internal/service"
)

type SpotHandler struct {
	spotService *service.SpotService
}

func NewSpotHandler(ss *service.SpotService) *SpotHandler {
	return &SpotHandler{spotService: ss}
}

// POST /api/v1/spots
func (h *SpotHandler) Create(c *gin.Context) {
	var dto domain.SpotCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	spot, err := h.spotService.Create(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// GET /api/v1/spots/:id
func (h *SpotHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	spot, err := h.spotService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// GET /api/v1/spots
func (h *SpotHandler) GetAll(c *gin.Context) {
	spots, err := h.spotService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// GET /api/v1/parking-lots/:id/spots
func (h *SpotHandler) GetByParkingLotID(c *gin.Context) {
	lotID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	spots, err := h.spotService.GetByParkingLotID(c.Request.Context(), lotID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// PUT /api/v1/spots/:id
func (h *SpotHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.SpotUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	spot, err := h.spotService.Update(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// PUT /api/v1/spots/:id/status
func (h *SpotHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.SpotStatusUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	spot, err := h.spotService.ChangeStatus(c.Request.Context(), id, dto.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// DELETE /api/v1/spots/:id
func (h *SpotHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.spotService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
