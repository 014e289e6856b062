package projects

import (
	"context"
	"net/http"
	"strconv"

	custom_error "github.com/clodobox/EventGear/pkg/errors"
	"github.com/clodobox/EventGear/pkg/metadata"
	"github.com/clodobox/EventGear/pkg/models"

	"github.com/gin-gonic/gin"
)

// Canceler releases a project's reservations; implemented by the
// allocation engine.
type Canceler interface {
	Cancel(ctx context.Context, projectID string) error
}

type Handler struct {
	service  *Service
	canceler Canceler
}

func NewHandler(service *Service, canceler Canceler) *Handler {
	return &Handler{service: service, canceler: canceler}
}

func (h *Handler) RegisterRoutes(read, write gin.IRouter) {
	write.POST("/projects", h.CreateProject)
	read.GET("/projects", h.ListProjects)
	read.GET("/projects/:id", h.GetProject)
	write.PATCH("/projects/:id", h.UpdateProject)
	write.POST("/projects/:id/status", h.TransitionProject)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	project, err := h.service.Create(req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to create project", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *Handler) ListProjects(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	projects, err := h.service.List(c.Query("status"), offset, limit)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to list projects", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.service.Get(c.Param("id"))
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to get project", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	var patch models.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	project, err := h.service.Update(c.Param("id"), patch)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to update project", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) TransitionProject(c *gin.Context) {
	var req models.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	newStatus, err := metadata.NewProjectStatus(req.Status)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid project status", "details": err.Error()})
		return
	}

	// Cancellation releases reservations, so it goes through the engine.
	if newStatus == metadata.ProjectCanceled {
		if err := h.canceler.Cancel(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to cancel project", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Project canceled"})
		return
	}

	project, err := h.service.Transition(c.Param("id"), newStatus)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": "Unable to change project status", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, project)
}
