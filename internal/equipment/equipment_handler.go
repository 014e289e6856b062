package equipment

import (
	"net/http"
	"strconv"

	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(read, write gin.IRouter) {
	write.POST("/equipment", h.CreateEquipment)
	read.GET("/equipment", h.ListEquipment)
	read.GET("/equipment/:id", h.GetEquipment)
	write.PATCH("/equipment/:id", h.UpdateEquipment)
	write.DELETE("/equipment/:id", h.DeactivateEquipment)
	write.PUT("/equipment/:id/quantity", h.AdjustTotal)
	write.POST("/equipment/:id/states", h.RecordState)
	read.GET("/equipment/:id/states", h.ListStates)
}

func (h *Handler) CreateEquipment(c *gin.Context) {
	var req models.EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	equipment, err := h.service.Create(req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to create equipment", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, equipment)
}

func (h *Handler) ListEquipment(c *gin.Context) {
	filter := models.EquipmentFilter{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		Offset:     intQuery(c, "offset", 0),
		Limit:      intQuery(c, "limit", 100),
	}

	items, err := h.service.List(filter)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to list equipment", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetEquipment(c *gin.Context) {
	equipment, err := h.service.Get(c.Param("id"))
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to get equipment", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, equipment)
}

func (h *Handler) UpdateEquipment(c *gin.Context) {
	var patch models.EquipmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	equipment, err := h.service.Update(c.Param("id"), patch)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to update equipment", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, equipment)
}

func (h *Handler) DeactivateEquipment(c *gin.Context) {
	if err := h.service.Deactivate(c.Param("id")); err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to deactivate equipment", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Equipment deactivated"})
}

func (h *Handler) AdjustTotal(c *gin.Context) {
	var req models.AdjustTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	equipment, err := h.service.AdjustTotal(c.Request.Context(), c.Param("id"), req.QuantityTotal)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to adjust total", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, equipment)
}

func (h *Handler) RecordState(c *gin.Context) {
	var req models.EquipmentStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	state, err := h.service.RecordState(c.Param("id"), req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to record equipment state", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, state)
}

func (h *Handler) ListStates(c *gin.Context) {
	states, err := h.service.ListStates(c.Param("id"))
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to list equipment states", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, states)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	value := c.Query(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
