package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_management/internal/domain"
	"parking_management/internal/service"
)

type TariffHandler struct {
	tariffService *service.TariffService
}

func NewTariffHandler(ts *service.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: ts}
}

// POST /api/v1/tariffs
func (h *TariffHandler) Create(c *gin.Context) {
	var dto domain.TariffCreateUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tariff, err := h.tariffService.Create(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tariff)
}

// GET /api/v1/tariffs/:id
func (h *TariffHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tariff, err := h.tariffService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

// GET /api/v1/tariffs
func (h *TariffHandler) GetAll(c *gin.Context) {
	tariffs, err := h.tariffService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariffs)
}

// PUT /api/v1/tariffs/:id
func (h *TariffHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.TariffCreateUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tariff, err := h.tariffService.Update(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

// PUT /api/v1/tariffs/:id/status
func (h *TariffHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var dto domain.TariffStatusUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tariff, err := h.tariffService.ChangeStatus(c.Request.Context(), id, dto.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariff)
}

// DELETE /api/v1/tariffs/:id
func (h *TariffHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.tariffService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
