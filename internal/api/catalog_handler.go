package api

import (
	"errors"
	"net/http"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/progression"
	"peakform/fitness-server/internal/service"
	"peakform/fitness-server/internal/validation"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves admin catalog maintenance and dose preview.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs ---

// SyncResultResponse is the DTO for a catalog pass summary.
type SyncResultResponse struct {
	Total     int `json:"total"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
}

// DosePreviewRequest defines the expected JSON for previewing progression.
type DosePreviewRequest struct {
	WeekIndex int         `json:"weekIndex" binding:"required,min=1"`
	Category  string      `json:"category" binding:"required"`
	BaseDose  domain.Dose `json:"baseDose" binding:"required"`
}

// DosePreviewResponse is the DTO returning the computed dose.
type DosePreviewResponse struct {
	WeekIndex   int         `json:"weekIndex"`
	Category    string      `json:"category"`
	BaseDose    domain.Dose `json:"baseDose"`
	PlannedDose domain.Dose `json:"plannedDose"`
}

func mapSyncResultToResponse(r *service.SyncResult) SyncResultResponse {
	if r == nil {
		return SyncResultResponse{}
	}
	return SyncResultResponse{
		Total:     r.Total,
		Changed:   r.Changed,
		Unchanged: r.Unchanged,
	}
}

// --- Handler Methods ---

// RebuildView recomputes the denormalized movement library view from the
// curated source tables.
func (h *CatalogHandler) RebuildView(c *gin.Context) {
	result, err := h.catalogService.RebuildDerivedView(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrLibraryInvalid) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to rebuild library view.")
		}
		return
	}
	c.JSON(http.StatusOK, mapSyncResultToResponse(result))
}

// SyncCatalog pushes the library view into the operational movement catalog.
func (h *CatalogHandler) SyncCatalog(c *gin.Context) {
	result, err := h.catalogService.SyncToOperationalCatalog(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to sync movement catalog.")
		return
	}
	c.JSON(http.StatusOK, mapSyncResultToResponse(result))
}

// PreviewDose computes the progressed dose for a given week without touching
// any stored enrollment.
func (h *CatalogHandler) PreviewDose(c *gin.Context) {
	var req DosePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := validation.ValidateDose(req.BaseDose); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	planned := progression.ComputeDose(req.WeekIndex, req.Category, req.BaseDose)
	c.JSON(http.StatusOK, DosePreviewResponse{
		WeekIndex:   req.WeekIndex,
		Category:    req.Category,
		BaseDose:    req.BaseDose,
		PlannedDose: planned,
	})
}
