package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"minami/training-system/internal/service"
)

// ReportHandler exposes daily reports, feedback and attachments.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// --- Request Structs ---

type ReportRequest struct {
	Date  time.Time `json:"date" binding:"required"`
	Title string    `json:"title" binding:"required"`
	Memo  string    `json:"memo,omitempty"`
	Flag  int       `json:"flag"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

type AttachmentUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

// --- Handler Methods ---

func (h *ReportHandler) CreateReport(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), actor, service.ReportInput{
		Date:  req.Date,
		Title: req.Title,
		Memo:  req.Memo,
		Flag:  req.Flag,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *ReportHandler) UpdateReport(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	reportID, ok := parseObjectIDParam(c, "reportId")
	if !ok {
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	report, err := h.reportService.UpdateReport(c.Request.Context(), actor, reportID, service.ReportInput{
		Date:  req.Date,
		Title: req.Title,
		Memo:  req.Memo,
		Flag:  req.Flag,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListForStudent returns a student's reports split into pending and replied.
func (h *ReportHandler) ListForStudent(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	studentID, ok := parseObjectIDParam(c, "studentId")
	if !ok {
		return
	}

	list, err := h.reportService.ListForStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListMine returns the calling student's own reports.
func (h *ReportHandler) ListMine(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}

	list, err := h.reportService.ListForStudent(c.Request.Context(), actor, actor.ID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ReplyFeedback records a teacher's feedback on a report.
func (h *ReportHandler) ReplyFeedback(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	reportID, ok := parseObjectIDParam(c, "reportId")
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	report, err := h.reportService.ReplyFeedback(c.Request.Context(), actor, reportID, req.Feedback)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RequestAttachmentUpload returns attachment metadata and a presigned PUT
// URL the client uploads the file bytes to.
func (h *ReportHandler) RequestAttachmentUpload(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	reportID, ok := parseObjectIDParam(c, "reportId")
	if !ok {
		return
	}

	var req AttachmentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.reportService.RequestAttachmentUpload(c.Request.Context(), actor, reportID, req.FileName, req.ContentType, req.Size)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, upload)
}

// GetAttachmentDownloadURL returns a presigned GET URL for an attachment.
func (h *ReportHandler) GetAttachmentDownloadURL(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve current user")
		return
	}
	attachmentID, ok := parseObjectIDParam(c, "attachmentId")
	if !ok {
		return
	}

	url, err := h.reportService.GetAttachmentDownloadURL(c.Request.Context(), actor, attachmentID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
