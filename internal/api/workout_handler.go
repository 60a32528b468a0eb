package api

import (
	"errors"
	"net/http"
	"time"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler serves scheduled workout instances and their status lifecycle.
type WorkoutHandler struct {
	programService   service.ProgramService
	lifecycleService service.LifecycleService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(programService service.ProgramService, lifecycleService service.LifecycleService) *WorkoutHandler {
	return &WorkoutHandler{
		programService:   programService,
		lifecycleService: lifecycleService,
	}
}

// --- DTOs ---

// UpdateStatusRequest defines the expected JSON for status transitions.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// WorkoutInstanceResponse is the DTO for a scheduled workout.
type WorkoutInstanceResponse struct {
	ID            string `json:"id"`
	EnrollmentID  string `json:"enrollmentId"`
	WeekIndex     int    `json:"weekIndex"`
	DayIndex      int    `json:"dayIndex"`
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduledDate"`
	Status        string `json:"status"`
}

// BlockInstanceResponse is the DTO for a workout block.
type BlockInstanceResponse struct {
	ID                string `json:"id"`
	WorkoutInstanceID string `json:"workoutInstanceId"`
	Sequence          int    `json:"sequence"`
	Name              string `json:"name"`
	Category          string `json:"category"`
}

// BlockItemInstanceResponse is the DTO for one movement entry inside a block.
type BlockItemInstanceResponse struct {
	ID              string      `json:"id"`
	BlockInstanceID string      `json:"blockInstanceId"`
	Sequence        int         `json:"sequence"`
	MovementID      string      `json:"movementId"`
	MovementName    string      `json:"movementName"`
	BaseDose        domain.Dose `json:"baseDose"`
	PlannedDose     domain.Dose `json:"plannedDose"`
	Status          string      `json:"status"`
}

// MapWorkoutInstanceToResponse converts a domain.WorkoutInstance to its DTO.
func MapWorkoutInstanceToResponse(w *domain.WorkoutInstance) WorkoutInstanceResponse {
	if w == nil {
		return WorkoutInstanceResponse{}
	}
	return WorkoutInstanceResponse{
		ID:            w.ID.Hex(),
		EnrollmentID:  w.EnrollmentID.Hex(),
		WeekIndex:     w.WeekIndex,
		DayIndex:      w.DayIndex,
		Title:         w.Title,
		ScheduledDate: w.ScheduledDate.Format("2006-01-02"),
		Status:        string(w.Status),
	}
}

// MapBlockInstanceToResponse converts a domain.BlockInstance to its DTO.
func MapBlockInstanceToResponse(b *domain.BlockInstance) BlockInstanceResponse {
	if b == nil {
		return BlockInstanceResponse{}
	}
	return BlockInstanceResponse{
		ID:                b.ID.Hex(),
		WorkoutInstanceID: b.WorkoutInstanceID.Hex(),
		Sequence:          b.Sequence,
		Name:              b.Name,
		Category:          b.Category,
	}
}

// MapBlockItemInstanceToResponse converts a domain.BlockItemInstance to its DTO.
func MapBlockItemInstanceToResponse(i *domain.BlockItemInstance) BlockItemInstanceResponse {
	if i == nil {
		return BlockItemInstanceResponse{}
	}
	return BlockItemInstanceResponse{
		ID:              i.ID.Hex(),
		BlockInstanceID: i.BlockInstanceID.Hex(),
		Sequence:        i.Sequence,
		MovementID:      i.MovementID.Hex(),
		MovementName:    i.MovementName,
		BaseDose:        i.BaseDose,
		PlannedDose:     i.PlannedDose,
		Status:          string(i.Status),
	}
}

// --- Handler Methods ---

// GetTodayWorkout returns the workout scheduled for today (or for the ?date=
// override) under the authenticated user's active enrollment.
func (h *WorkoutHandler) GetTodayWorkout(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
			return
		}
		day = parsed
	}

	workout, err := h.programService.FetchTodayWorkout(c.Request.Context(), userID, day)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveEnrollment), errors.Is(err, service.ErrNoWorkoutToday):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve today's workout.")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutInstanceToResponse(workout))
}

// GetWorkoutBlocks returns the ordered blocks of one workout instance.
func (h *WorkoutHandler) GetWorkoutBlocks(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	blocks, err := h.programService.FetchWorkoutBlocks(c.Request.Context(), workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout blocks.")
		}
		return
	}

	response := make([]BlockInstanceResponse, 0, len(blocks))
	for i := range blocks {
		response = append(response, MapBlockInstanceToResponse(&blocks[i]))
	}
	c.JSON(http.StatusOK, response)
}

// GetBlockItems returns the ordered movement entries of one block instance.
func (h *WorkoutHandler) GetBlockItems(c *gin.Context) {
	blockID, err := primitive.ObjectIDFromHex(c.Param("blockId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid block ID format.")
		return
	}

	items, err := h.programService.FetchBlockItems(c.Request.Context(), blockID)
	if err != nil {
		if errors.Is(err, service.ErrBlockNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve block items.")
		}
		return
	}

	response := make([]BlockItemInstanceResponse, 0, len(items))
	for i := range items {
		response = append(response, MapBlockItemInstanceToResponse(&items[i]))
	}
	c.JSON(http.StatusOK, response)
}

// UpdateWorkoutStatus transitions a workout instance's lifecycle status.
func (h *WorkoutHandler) UpdateWorkoutStatus(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format.")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err = h.lifecycleService.SetWorkoutStatus(c.Request.Context(), workoutID, domain.InstanceStatus(req.Status))
	if err != nil {
		h.mapLifecycleError(c, err, service.ErrWorkoutNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully."})
}

// UpdateItemStatus transitions a block item instance's lifecycle status.
func (h *WorkoutHandler) UpdateItemStatus(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid item ID format.")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err = h.lifecycleService.SetMovementStatus(c.Request.Context(), itemID, domain.InstanceStatus(req.Status))
	if err != nil {
		h.mapLifecycleError(c, err, service.ErrBlockItemNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully."})
}

func (h *WorkoutHandler) mapLifecycleError(c *gin.Context, err error, notFound error) {
	switch {
	case errors.Is(err, notFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnknownStatus):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIllegalTransition):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to update status.")
	}
}
