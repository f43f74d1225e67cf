package handler

import (
	"net/http"

	"surveyor/internal/model"
	"surveyor/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler handles profile set operations
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Create stores a profile set with its profiles
// @Summary Create profile set
// @Tags profiles
// @Accept json
// @Param request body model.ProfileSet true "Profile set"
// @Router /api/v1/profile-sets [post]
func (h *ProfileHandler) Create(c *gin.Context) {
	var set model.ProfileSet
	if err := c.ShouldBindJSON(&set); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.profileService.CreateSet(c.Request.Context(), &set)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns a profile set by name
func (h *ProfileHandler) Get(c *gin.Context) {
	set, err := h.profileService.GetSet(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

// List returns all profile sets without their profiles
func (h *ProfileHandler) List(c *gin.Context) {
	sets, err := h.profileService.ListSets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_sets": sets})
}
