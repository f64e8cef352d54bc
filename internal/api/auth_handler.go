package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/service"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	EmployeeID string      `json:"employeeId" binding:"required"`
	Name       string      `json:"name" binding:"required"`
	Email      string      `json:"email" binding:"required,email"`
	Password   string      `json:"password" binding:"required,min=8"`
	Role       domain.Role `json:"role" binding:"required,oneof=admin teacher student"`
	TeacherID  string      `json:"teacherId,omitempty"` // Required when role is student
}

// UserResponse excludes sensitive info like the password hash.
type UserResponse struct {
	ID             string      `json:"id"`
	EmployeeID     string      `json:"employeeId"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	TrainingStatus string      `json:"trainingStatus,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register creates a new account. Student registrations must name an
// existing teacher to be assigned to.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.RegisterInput{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
	}
	if req.Role == domain.RoleStudent {
		teacherID, err := primitive.ObjectIDFromHex(req.TeacherID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "A valid teacherId is required for student registration")
			return
		}
		input.TeacherID = teacherID
	}

	user, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapUserToResponse(user))
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAccountDisabled):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithServiceError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  mapUserToResponse(user),
	})
}

// mapUserToResponse converts a domain User to a UserResponse DTO.
func mapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:             user.ID.Hex(),
		EmployeeID:     user.EmployeeID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		TrainingStatus: user.TrainingStatus,
		CreatedAt:      user.CreatedAt,
	}
}
