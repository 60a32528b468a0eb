package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentHandler holds the assignment and program query dependencies.
type EnrollmentHandler struct {
	assignmentService service.AssignmentService
	programService    service.ProgramService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(assignmentService service.AssignmentService, programService service.ProgramService) *EnrollmentHandler {
	return &EnrollmentHandler{
		assignmentService: assignmentService,
		programService:    programService,
	}
}

// --- DTOs for API (Data Transfer Objects) ---

// AssignProgramRequest defines the expected JSON for enrolling in a program.
type AssignProgramRequest struct {
	TemplateSlug string   `json:"templateSlug" binding:"required"`
	StartDate    string   `json:"startDate" binding:"required"`  // YYYY-MM-DD
	Weekdays     []string `json:"weekdays" binding:"required"`   // e.g. ["monday","wednesday","friday"]
}

// EnrollmentResponse is the DTO for returning enrollment details.
type EnrollmentResponse struct {
	ID              string    `json:"id"`
	Reference       string    `json:"reference"`
	TemplateSlug    string    `json:"templateSlug"`
	TemplateVersion int       `json:"templateVersion"`
	TemplateName    string    `json:"templateName"`
	StartDate       string    `json:"startDate"`
	WorkoutsPerWeek int       `json:"workoutsPerWeek"`
	Timezone        string    `json:"timezone"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// MapEnrollmentToResponse converts a domain.Enrollment to its DTO.
func MapEnrollmentToResponse(e *domain.Enrollment) EnrollmentResponse {
	if e == nil {
		return EnrollmentResponse{}
	}
	return EnrollmentResponse{
		ID:              e.ID.Hex(),
		Reference:       e.Reference,
		TemplateSlug:    e.TemplateSlug,
		TemplateVersion: e.TemplateVersion,
		TemplateName:    e.TemplateName,
		StartDate:       e.StartDate.Format("2006-01-02"),
		WorkoutsPerWeek: e.WorkoutsPerWeek,
		Timezone:        e.Timezone,
		Status:          string(e.Status),
		CreatedAt:       e.CreatedAt,
	}
}

// --- Handler Methods ---

// AssignProgram enrolls the authenticated user into the latest version of a
// template program, materializing the full schedule.
func (h *EnrollmentHandler) AssignProgram(c *gin.Context) {
	var req AssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "startDate must be formatted YYYY-MM-DD")
		return
	}
	weekdays, err := parseWeekdays(req.Weekdays)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	enrollmentID, err := h.assignmentService.AssignProgram(c.Request.Context(), userID, req.TemplateSlug, startDate, weekdays)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSchedulingConflict), errors.Is(err, service.ErrEnrollmentActive):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign program.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"enrollmentId": enrollmentID.Hex()})
}

// GetActiveEnrollment returns the authenticated user's active enrollment.
func (h *EnrollmentHandler) GetActiveEnrollment(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	enrollment, err := h.programService.FetchActiveEnrollment(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveEnrollment) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve enrollment.")
		}
		return
	}
	c.JSON(http.StatusOK, MapEnrollmentToResponse(enrollment))
}

// GetProgramStructure returns phases, weeks, and workouts for one enrollment.
func (h *EnrollmentHandler) GetProgramStructure(c *gin.Context) {
	enrollmentID, err := primitive.ObjectIDFromHex(c.Param("enrollmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid enrollment ID format.")
		return
	}

	structure, err := h.programService.FetchProgramStructure(c.Request.Context(), enrollmentID)
	if err != nil {
		if errors.Is(err, service.ErrEnrollmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve program structure.")
		}
		return
	}
	c.JSON(http.StatusOK, structure)
}

// userIDParam extracts the authenticated user's ObjectID, aborting on failure.
func userIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// parseWeekdays converts lowercase weekday names into time.Weekday values.
func parseWeekdays(names []string) ([]time.Weekday, error) {
	lookup := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	weekdays := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		wd, ok := lookup[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		weekdays = append(weekdays, wd)
	}
	return weekdays, nil
}
