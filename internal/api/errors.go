package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"minami/training-system/internal/service"
)

// abortWithServiceError maps service-layer sentinels onto HTTP statuses.
// Anything unrecognized is logged and surfaces as an opaque 500.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrTodoNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrTeacherNotFound),
		errors.Is(err, service.ErrTrainingPlanNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, service.ErrAttachmentNotFound),
		errors.Is(err, service.ErrQuestionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAlreadyAssigned),
		errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserNotStudent),
		errors.Is(err, service.ErrUserNotTeacher),
		errors.Is(err, service.ErrInvalidTrainingStatus):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("ERROR: unhandled service error: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
