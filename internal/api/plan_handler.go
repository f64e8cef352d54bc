package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/service"
)

// PlanHandler exposes the plan template hierarchy. All routes are mounted
// behind the staff role middleware; authoring is never student-facing.
type PlanHandler struct {
	planService service.PlanTemplateService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanTemplateService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request Structs ---

type PlanRequest struct {
	Name         string   `json:"name" binding:"required"`
	ExpectedDays *float64 `json:"expectedDays,omitempty"`
	Description  string   `json:"description,omitempty"`
}

type SectionRequest struct {
	PlanID       string   `json:"planId,omitempty"` // Required on create; on update a different value re-parents
	Name         string   `json:"name" binding:"required"`
	ExpectedDays *float64 `json:"expectedDays,omitempty"`
	SortOrder    *int     `json:"sortOrder,omitempty"`
}

type TopicRequest struct {
	SectionID string `json:"sectionId,omitempty"`
	Name      string `json:"name" binding:"required"`
	SortOrder *int   `json:"sortOrder,omitempty"`
}

type TodoRequest struct {
	TopicID   string `json:"topicId,omitempty"`
	Name      string `json:"name" binding:"required"`
	DayIndex  *int   `json:"dayIndex,omitempty"`
	SortOrder *int   `json:"sortOrder,omitempty"`
}

// --- Plan Handlers ---

func (h *PlanHandler) ListTemplates(c *gin.Context) {
	trees, err := h.planService.ListTemplates(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trees)
}

func (h *PlanHandler) GetTemplate(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}
	tree, err := h.planService.GetTemplate(c.Request.Context(), planID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	plan, err := h.planService.CreatePlan(c.Request.Context(), service.PlanInput{
		Name:         req.Name,
		ExpectedDays: req.ExpectedDays,
		Description:  req.Description,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	plan, err := h.planService.UpdatePlan(c.Request.Context(), planID, service.PlanInput{
		Name:         req.Name,
		ExpectedDays: req.ExpectedDays,
		Description:  req.Description,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, ok := parseObjectIDParam(c, "planId")
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), planID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Section Handlers ---

func (h *PlanHandler) AddSection(c *gin.Context) {
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A valid planId is required")
		return
	}
	section, err := h.planService.AddSection(c.Request.Context(), service.SectionInput{
		PlanID:       planID,
		Name:         req.Name,
		ExpectedDays: req.ExpectedDays,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

func (h *PlanHandler) UpdateSection(c *gin.Context) {
	sectionID, ok := parseObjectIDParam(c, "sectionId")
	if !ok {
		return
	}
	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	input := service.SectionInput{
		Name:         req.Name,
		ExpectedDays: req.ExpectedDays,
		SortOrder:    req.SortOrder,
	}
	if req.PlanID != "" {
		planID, err := primitive.ObjectIDFromHex(req.PlanID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid planId format")
			return
		}
		input.PlanID = planID
	}
	section, err := h.planService.UpdateSection(c.Request.Context(), sectionID, input)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *PlanHandler) DeleteSection(c *gin.Context) {
	sectionID, ok := parseObjectIDParam(c, "sectionId")
	if !ok {
		return
	}
	if err := h.planService.DeleteSection(c.Request.Context(), sectionID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Topic Handlers ---

func (h *PlanHandler) AddTopic(c *gin.Context) {
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	sectionID, err := primitive.ObjectIDFromHex(req.SectionID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A valid sectionId is required")
		return
	}
	topic, err := h.planService.AddTopic(c.Request.Context(), service.TopicInput{
		SectionID: sectionID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *PlanHandler) UpdateTopic(c *gin.Context) {
	topicID, ok := parseObjectIDParam(c, "topicId")
	if !ok {
		return
	}
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	input := service.TopicInput{
		Name:      req.Name,
		SortOrder: req.SortOrder,
	}
	if req.SectionID != "" {
		sectionID, err := primitive.ObjectIDFromHex(req.SectionID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid sectionId format")
			return
		}
		input.SectionID = sectionID
	}
	topic, err := h.planService.UpdateTopic(c.Request.Context(), topicID, input)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *PlanHandler) DeleteTopic(c *gin.Context) {
	topicID, ok := parseObjectIDParam(c, "topicId")
	if !ok {
		return
	}
	if err := h.planService.DeleteTopic(c.Request.Context(), topicID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Todo Handlers ---

func (h *PlanHandler) AddTodo(c *gin.Context) {
	var req TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	topicID, err := primitive.ObjectIDFromHex(req.TopicID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A valid topicId is required")
		return
	}
	todo, err := h.planService.AddTodo(c.Request.Context(), service.TodoInput{
		TopicID:   topicID,
		Name:      req.Name,
		DayIndex:  req.DayIndex,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *PlanHandler) UpdateTodo(c *gin.Context) {
	todoID, ok := parseObjectIDParam(c, "todoId")
	if !ok {
		return
	}
	var req TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	input := service.TodoInput{
		Name:      req.Name,
		DayIndex:  req.DayIndex,
		SortOrder: req.SortOrder,
	}
	if req.TopicID != "" {
		topicID, err := primitive.ObjectIDFromHex(req.TopicID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid topicId format")
			return
		}
		input.TopicID = topicID
	}
	todo, err := h.planService.UpdateTodo(c.Request.Context(), todoID, input)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *PlanHandler) DeleteTodo(c *gin.Context) {
	todoID, ok := parseObjectIDParam(c, "todoId")
	if !ok {
		return
	}
	if err := h.planService.DeleteTodo(c.Request.Context(), todoID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
