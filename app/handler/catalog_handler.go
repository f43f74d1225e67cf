package handler

import (
	"net/http"

	"surveyor/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes reference data
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Instruments lists registered instruments
func (h *CatalogHandler) Instruments(c *gin.Context) {
	instruments, err := h.catalogService.ListInstruments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instruments": instruments})
}

// Providers lists configured providers
func (h *CatalogHandler) Providers(c *gin.Context) {
	providers, err := h.catalogService.ListProviders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

// Encodings lists input systems
func (h *CatalogHandler) Encodings(c *gin.Context) {
	encodings, err := h.catalogService.ListEncodings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"encodings": encodings})
}
