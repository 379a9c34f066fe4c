package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"maintenance-logbook-backend/internal/lifecycle"
	"maintenance-logbook-backend/internal/model"
)

type createComplaintRequest struct {
	Title       string         `json:"title" form:"title"`
	Description string         `json:"description" form:"description"`
	Category    model.Category `json:"category" form:"category"`
	Priority    model.Priority `json:"priority" form:"priority"`
	RoomNumber  string         `json:"roomNumber" form:"roomNumber"`
}

type assignRequest struct {
	TechnicianID string `json:"technicianId" binding:"required"`
}

type statusUpdateRequest struct {
	Status  model.Status `json:"status" binding:"required"`
	Message string       `json:"message"`
}

// ListComplaints handles GET /api/complaints.
func (h *Handler) ListComplaints(c *gin.Context) {
	filter := lifecycle.ListFilter{
		Status:   c.DefaultQuery("status", "all"),
		Category: c.DefaultQuery("category", "all"),
		Room:     c.Query("room"),
	}
	if c.Query("mine") == "true" {
		filter.Resident = principal(c).Email
	}

	views, err := h.complaints.ListComplaints(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetComplaint handles GET /api/complaints/:id.
func (h *Handler) GetComplaint(c *gin.Context) {
	view, err := h.complaints.GetComplaint(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Query("order") == "desc" {
		view = view.NewestFirst()
	}
	c.JSON(http.StatusOK, view)
}

// CreateComplaint handles POST /api/complaints. Multipart bodies may carry up
// to the configured number of images in the "images" field.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var req createComplaintRequest
	var refs []string

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			return
		}
		files := form.File["images"]
		if err := lifecycle.CheckImageCount(len(files), h.complaints.MaxImages()); err != nil {
			h.fail(c, err)
			return
		}
		refs, err = h.attachments.SaveAll(files)
		if err != nil {
			h.fail(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	created, err := h.complaints.CreateComplaint(c.Request.Context(), principal(c), lifecycle.NewComplaint{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		RoomNumber:  req.RoomNumber,
		Images:      refs,
	})
	if err != nil {
		h.attachments.Remove(refs)
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.complaints.View(created))
}

// AssignTechnician handles POST /api/complaints/:id/assign.
func (h *Handler) AssignTechnician(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "technicianId is required"})
		return
	}

	updated, err := h.complaints.AssignTechnician(c.Request.Context(), principal(c), c.Param("id"), req.TechnicianID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.complaints.View(updated))
}

// PostUpdate handles POST /api/complaints/:id/updates.
func (h *Handler) PostUpdate(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	updated, err := h.complaints.RecordStatusUpdate(c.Request.Context(), principal(c), c.Param("id"), req.Status, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.complaints.View(updated))
}

// GetAnalytics handles GET /api/analytics.
func (h *Handler) GetAnalytics(c *gin.Context) {
	summary, err := h.complaints.Analytics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
