package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/service"
)

// TrainingHandler exposes plan assignment and task tracking.
type TrainingHandler struct {
	trainingService service.TrainingService
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(trainingService service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// --- Request Structs ---

type AssignPlanRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	PlanID    string `json:"planId" binding:"required"`
}

type UpdateTaskRequest struct {
	Status       string     `json:"status" binding:"required"`
	ProgressNote string     `json:"progressNote,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// --- Handler Methods ---

// AssignPlan instantiates a template for a student (staff only via routes).
func (h *TrainingHandler) AssignPlan(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	var req AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid studentId format")
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format")
		return
	}

	view, err := h.trainingService.AssignPlan(c.Request.Context(), actor, studentID, planID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListForStudent returns a student's training plans with ordered tasks.
func (h *TrainingHandler) ListForStudent(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	studentID, ok := parseObjectIDParam(c, "studentId")
	if !ok {
		return
	}

	views, err := h.trainingService.ListForStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListMine returns the calling student's own training plans.
func (h *TrainingHandler) ListMine(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	views, err := h.trainingService.ListForStudent(c.Request.Context(), actor, actor.ID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// UpdateTask records progress on a single task.
func (h *TrainingHandler) UpdateTask(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	taskID, ok := parseObjectIDParam(c, "taskId")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	view, err := h.trainingService.UpdateTask(c.Request.Context(), actor, taskID, service.UpdateTaskInput{
		Status:       req.Status,
		ProgressNote: req.ProgressNote,
		StartedAt:    req.StartedAt,
		CompletedAt:  req.CompletedAt,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeletePlan removes one plan instantiation and its tasks.
func (h *TrainingHandler) DeletePlan(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	trainingPlanID, ok := parseObjectIDParam(c, "trainingPlanId")
	if !ok {
		return
	}

	if err := h.trainingService.DeletePlan(c.Request.Context(), actor, trainingPlanID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats returns the training dashboard counters.
func (h *TrainingHandler) GetStats(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	stats, err := h.trainingService.GetTrainingStats(c.Request.Context(), actor)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
