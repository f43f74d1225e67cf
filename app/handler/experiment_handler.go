package handler

import (
	"net/http"
	"strconv"

	"surveyor/internal/model"
	"surveyor/internal/service"
	"surveyor/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ExperimentHandler handles experiment operations
type ExperimentHandler struct {
	expanderService   *service.ExpanderService
	experimentService *service.ExperimentService
}

// NewExperimentHandler creates experiment handler
func NewExperimentHandler(expanderService *service.ExpanderService, experimentService *service.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		expanderService:   expanderService,
		experimentService: experimentService,
	}
}

func experimentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid experiment id"})
		return 0, false
	}
	return id, true
}

// Create creates an experiment and, unless expand=false, its work units
// @Summary Create experiment
// @Tags experiments
// @Accept json
// @Produce json
// @Param expand query bool false "Expand into work units (default true)"
// @Param request body model.ExperimentDefinition true "Experiment definition"
// @Router /api/v1/experiments [post]
func (h *ExperimentHandler) Create(c *gin.Context) {
	var def model.ExperimentDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		logger.WarnCtx(c.Request.Context(), "invalid experiment definition: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if c.DefaultQuery("expand", "true") == "false" {
		experiment, err := h.expanderService.CreateExperiment(c.Request.Context(), &def)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"experiment": experiment, "work_units": 0})
		return
	}

	experiment, created, err := h.expanderService.CreateAndExpand(c.Request.Context(), &def)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"experiment": experiment, "work_units": created})
}

// Expand creates the work units of an existing experiment
// @Summary Expand experiment
// @Tags experiments
// @Param id path int true "Experiment ID"
// @Router /api/v1/experiments/{id}/expand [post]
func (h *ExperimentHandler) Expand(c *gin.Context) {
	id, ok := experimentID(c)
	if !ok {
		return
	}

	created, err := h.expanderService.Expand(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiment_id": id, "work_units": created})
}

// Get returns the experiment with work unit counts per status
// @Summary Get experiment status
// @Tags experiments
// @Param id path int true "Experiment ID"
// @Success 200 {object} model.ExperimentSummary
// @Router /api/v1/experiments/{id} [get]
func (h *ExperimentHandler) Get(c *gin.Context) {
	id, ok := experimentID(c)
	if !ok {
		return
	}

	summary, err := h.experimentService.GetSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// List returns experiments newest first
func (h *ExperimentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	experiments, err := h.experimentService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiments": experiments})
}

// Cancel cancels an experiment
// @Summary Cancel experiment
// @Tags experiments
// @Param id path int true "Experiment ID"
// @Router /api/v1/experiments/{id}/cancel [post]
func (h *ExperimentHandler) Cancel(c *gin.Context) {
	id, ok := experimentID(c)
	if !ok {
		return
	}

	if err := h.experimentService.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "experiment cancelled"})
}

// ListUnits lists an experiment's work units, optionally filtered by status
func (h *ExperimentHandler) ListUnits(c *gin.Context) {
	id, ok := experimentID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	units, err := h.experimentService.ListUnits(c.Request.Context(), id, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_units": units})
}

// GetUnit returns one work unit with its responses and result
func (h *ExperimentHandler) GetUnit(c *gin.Context) {
	unitID, err := strconv.ParseInt(c.Param("unit_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work unit id"})
		return
	}

	detail, err := h.experimentService.GetUnit(c.Request.Context(), unitID)
	if err != nil {
		respondError(c, err)
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "work unit not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}
