package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"minami/training-system/internal/service"
)

// QuestionHandler exposes student questions and teacher answers.
type QuestionHandler struct {
	questionService service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

type QuestionRequest struct {
	Date    time.Time `json:"date" binding:"required"`
	Title   string    `json:"title" binding:"required"`
	Content string    `json:"content,omitempty"`
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), actor, service.QuestionInput{
		Date:    req.Date,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	questionID, ok := parseObjectIDParam(c, "questionId")
	if !ok {
		return
	}

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), actor, questionID, service.QuestionInput{
		Date:    req.Date,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// ListForStudent returns a student's questions split into pending and
// replied.
func (h *QuestionHandler) ListForStudent(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	studentID, ok := parseObjectIDParam(c, "studentId")
	if !ok {
		return
	}

	list, err := h.questionService.ListForStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListMine returns the calling student's own questions.
func (h *QuestionHandler) ListMine(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	list, err := h.questionService.ListForStudent(c.Request.Context(), actor, actor.ID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ReplyFeedback records a teacher's answer to a question.
func (h *QuestionHandler) ReplyFeedback(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	questionID, ok := parseObjectIDParam(c, "questionId")
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	question, err := h.questionService.ReplyFeedback(c.Request.Context(), actor, questionID, req.Feedback)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}
