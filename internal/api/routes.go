package api

import (
	"net/http"

	"peakform/fitness-server/internal/domain"
	"peakform/fitness-server/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	assignmentService service.AssignmentService,
	programService service.ProgramService,
	lifecycleService service.LifecycleService,
	catalogService service.CatalogService,
) {

	enrollmentHandler := NewEnrollmentHandler(assignmentService, programService)
	workoutHandler := NewWorkoutHandler(programService, lifecycleService)
	catalogHandler := NewCatalogHandler(catalogService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.Use(RequestIDMiddleware(), LoggingMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Enrollment Routes ---
		enrollmentGroup := protected.Group("/enrollments")
		{
			// POST /api/v1/enrollments - enroll in a program template
			enrollmentGroup.POST("", enrollmentHandler.AssignProgram)
			// GET /api/v1/enrollments/active
			enrollmentGroup.GET("/active", enrollmentHandler.GetActiveEnrollment)
			// GET /api/v1/enrollments/{enrollmentId}/structure
			enrollmentGroup.GET("/:enrollmentId/structure", enrollmentHandler.GetProgramStructure)
		}

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			// GET /api/v1/workouts/today (optional ?date=YYYY-MM-DD)
			workoutGroup.GET("/today", workoutHandler.GetTodayWorkout)
			// GET /api/v1/workouts/{workoutId}/blocks
			workoutGroup.GET("/:workoutId/blocks", workoutHandler.GetWorkoutBlocks)
			// PATCH /api/v1/workouts/{workoutId}/status
			workoutGroup.PATCH("/:workoutId/status", workoutHandler.UpdateWorkoutStatus)
		}

		// --- Block Item Routes ---
		blockGroup := protected.Group("/blocks")
		{
			// GET /api/v1/blocks/{blockId}/items
			blockGroup.GET("/:blockId/items", workoutHandler.GetBlockItems)
		}
		itemGroup := protected.Group("/items")
		{
			// PATCH /api/v1/items/{itemId}/status
			itemGroup.PATCH("/:itemId/status", workoutHandler.UpdateItemStatus)
		}

		// POST /api/v1/dose/preview - progression math without persistence
		protected.POST("/dose/preview", catalogHandler.PreviewDose)

		// --- Admin Catalog Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			// POST /api/v1/admin/catalog/rebuild
			adminGroup.POST("/catalog/rebuild", catalogHandler.RebuildView)
			// POST /api/v1/admin/catalog/sync
			adminGroup.POST("/catalog/sync", catalogHandler.SyncCatalog)
		}
	}
}
