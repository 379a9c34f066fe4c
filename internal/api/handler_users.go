package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-logbook-backend/internal/account"
	"maintenance-logbook-backend/internal/model"
)

type registerRequest struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"required"`
	Password string     `json:"password" binding:"required"`
	Role     model.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type addTechnicianRequest struct {
	Name           string         `json:"name" binding:"required"`
	Email          string         `json:"email" binding:"required"`
	Password       string         `json:"password" binding:"required"`
	Specialization model.Category `json:"specialization" binding:"required"`
}

// Register handles POST /api/users/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}

	session, err := h.accounts.Register(c.Request.Context(), account.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Login handles POST /api/users/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// AddTechnician handles POST /api/users/technicians.
func (h *Handler) AddTechnician(c *gin.Context) {
	var req addTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password and specialization are required"})
		return
	}

	tech, err := h.accounts.AddTechnician(c.Request.Context(), principal(c), account.NewTechnician{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Specialization: req.Specialization,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Technician added successfully", "user": tech})
}

// ListTechnicians handles GET /api/users/technicians.
func (h *Handler) ListTechnicians(c *gin.Context) {
	techs, err := h.accounts.ListTechnicians(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, techs)
}
