package handler

import (
	"net/http"

	"surveyor/internal/model"
	"surveyor/internal/service"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler read API over finished results
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func bindFilter(c *gin.Context) (model.AnalysisFilter, bool) {
	var filter model.AnalysisFilter
	id, ok := experimentID(c)
	if !ok {
		return filter, false
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return filter, false
	}
	filter.ExperimentID = id
	return filter, true
}

// Results lists results with their unit dimensions
// @Summary List results
// @Tags analysis
// @Param id path int true "Experiment ID"
// @Param instrument query string false "Instrument filter"
// @Param encoding query string false "Encoding filter"
// @Param provider query string false "Provider filter"
// @Param profile_label query string false "Profile label filter"
// @Router /api/v1/experiments/{id}/results [get]
func (h *AnalysisHandler) Results(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	rows, err := h.analysisService.ListResults(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows})
}

// Items lists per-item post-reverse scores
func (h *AnalysisHandler) Items(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	rows, err := h.analysisService.ListItemScores(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// Summary counts results and averages totals per group_by combination
// @Summary Summarize results
// @Tags analysis
// @Param id path int true "Experiment ID"
// @Param group_by query string false "Comma separated: instrument,encoding,profile_label,provider"
// @Router /api/v1/experiments/{id}/summary [get]
func (h *AnalysisHandler) Summary(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	rows, err := h.analysisService.Summarize(c.Request.Context(), filter, c.Query("group_by"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": rows})
}
