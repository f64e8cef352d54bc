package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"minami/training-system/internal/service"
)

// AccountHandler exposes the account dashboard endpoints.
type AccountHandler struct {
	accountService service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

type TrainingStatusRequest struct {
	TrainingStatus string `json:"trainingStatus" binding:"required"`
}

// GetSummary returns the account counters for the dashboard.
func (h *AccountHandler) GetSummary(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	summary, err := h.accountService.BuildSummary(c.Request.Context(), actor)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListAccounts returns all accounts for admins, assigned students for
// teachers.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), actor)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// GetAccount returns one account with teacher identity and progress for
// student rows.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), actor, userID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// ListTeachers returns the teacher accounts so registration flows can pick
// an assignee.
func (h *AccountHandler) ListTeachers(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	teachers, err := h.accountService.ListTeachers(c.Request.Context(), actor)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, teachers)
}

// UpdateTrainingStatus marks a student as still in training or done.
func (h *AccountHandler) UpdateTrainingStatus(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}

	var req TrainingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	account, err := h.accountService.UpdateTrainingStatus(c.Request.Context(), actor, userID, req.TrainingStatus)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
