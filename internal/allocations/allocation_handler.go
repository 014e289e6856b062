package allocations

import (
	"net/http"
	"time"

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
	write.POST("/projects/:id/equipment", h.Reserve)
	read.GET("/projects/:id/equipment", h.ListForProject)
	write.POST("/projects/:id/checkout", h.Checkout)
	write.POST("/projects/:id/return", h.Return)
	read.GET("/equipment/:id/availability", h.Availability)
}

func (h *Handler) Reserve(c *gin.Context) {
	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	allocation, err := h.service.Reserve(c.Request.Context(), c.Param("id"), req.EquipmentID, req.Quantity, req.Notes)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, allocation)
}

func (h *Handler) ListForProject(c *gin.Context) {
	allocations, err := h.service.ListForProject(c.Param("id"))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocations)
}

func (h *Handler) Checkout(c *gin.Context) {
	checkedOut, err := h.service.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Equipment checked out", "allocations": checkedOut})
}

func (h *Handler) Return(c *gin.Context) {
	var req models.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	allocation, err := h.service.Return(c.Request.Context(), c.Param("id"), req.EquipmentID, req.Quantity)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

func (h *Handler) Availability(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid start date", "details": err.Error()})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid end date", "details": err.Error()})
		return
	}

	available, err := h.service.Availability(c.Request.Context(), c.Param("id"), Window{Start: start, End: end})
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"equipment_id": c.Param("id"),
		"start":        c.Query("start"),
		"end":          c.Query("end"),
		"available":    available,
	})
}

// respondWithError keeps the per-kind payloads in one place; availability
// conflicts carry their numbers so clients can display both sides.
func (h *Handler) respondWithError(c *gin.Context, err error) {
	status := custom_error.StatusCode(err)

	if insufficient, ok := err.(*custom_error.InsufficientAvailabilityError); ok {
		c.JSON(status, gin.H{
			"error":     "Insufficient availability",
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
		return
	}

	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
