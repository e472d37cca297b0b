package handler

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"carmeet/internal/model"
	"carmeet/internal/service"

	"github.com/gin-gonic/gin"
)

// RegistrationHandler handles registration intake, public lookup and
// admin moderation requests
type RegistrationHandler struct {
	service service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(s service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: s}
}

// Create accepts the multipart registration form, including any photo
// files under the "photos" field.
func (h *RegistrationHandler) Create(c *gin.Context) {
	var req model.CreateRegistrationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid required fields"})
		return
	}

	var photos []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		photos = form.File["photos"]
	}

	id, err := h.service.Submit(c.Request.Context(), req, photos)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		case errors.Is(err, service.ErrInvalidFileFormat), errors.Is(err, service.ErrFileSizeExceeded):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Error creating registration: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// CheckStatus looks up a registration's public status by license plate
func (h *RegistrationHandler) CheckStatus(c *gin.Context) {
	status, err := h.service.CheckPlate(c.Request.Context(), c.Query("plate"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPlate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing plate parameter"})
		case errors.Is(err, service.ErrRegistrationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		default:
			log.Printf("Error checking plate: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListVehicles returns one page of accepted registrations for the public
// vehicles gallery
func (h *RegistrationHandler) ListVehicles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageLimit)))

	vehiclePage, err := h.service.ListAccepted(c.Request.Context(), page, limit)
	if err != nil {
		log.Printf("Error listing vehicles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, vehiclePage)
}

// ListAllAdmin returns every registration, newest first. Session-gated.
func (h *RegistrationHandler) ListAllAdmin(c *gin.Context) {
	regs, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		log.Printf("Error listing registrations for admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	c.JSON(http.StatusOK, regs)
}

// Moderate applies an accept/decline action to a registration. Session-gated.
func (h *RegistrationHandler) Moderate(c *gin.Context) {
	var req model.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := h.service.Moderate(c.Request.Context(), req.ID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		case errors.Is(err, service.ErrRegistrationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		default:
			log.Printf("Error moderating registration %d: %v", req.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

// RegisterRegistrationRoutes registers public and admin registration routes
func (h *RegistrationHandler) RegisterRegistrationRoutes(rg *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	rg.POST("/register", h.Create)
	rg.GET("/check", h.CheckStatus)
	rg.GET("/vehicles", h.ListVehicles)

	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(sessionMW)
	{
		adminRoutes.GET("/registrations", h.ListAllAdmin)
		adminRoutes.PATCH("/registrations", h.Moderate)
	}
}
