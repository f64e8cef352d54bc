package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
	"minami/training-system/internal/storage"
)

// --- Error Definitions ---
var (
	ErrReportNotFound     = errors.New("daily report not found")
	ErrAttachmentNotFound = errors.New("report attachment not found")
)

// ReportInput carries the student-editable report fields.
type ReportInput struct {
	Date  time.Time
	Title string
	Memo  string
	Flag  int
}

// ReportView is a report enriched for display with the replying teacher's
// name and the attachment metadata.
type ReportView struct {
	domain.DailyReport
	TeacherName string                    `json:"teacherName,omitempty"`
	Attachments []domain.ReportAttachment `json:"attachments"`
}

// ReportList splits a student's reports into those still waiting for
// teacher feedback and those already replied to.
type ReportList struct {
	Pending []ReportView `json:"pending"`
	Replied []ReportView `json:"replied"`
}

// AttachmentUpload is the response to an upload request: the metadata row
// plus a presigned PUT URL the client uploads the file bytes to.
type AttachmentUpload struct {
	Attachment domain.ReportAttachment `json:"attachment"`
	UploadURL  string                  `json:"uploadUrl"`
}

// --- Service Interface ---

type ReportService interface {
	CreateReport(ctx context.Context, actor *domain.User, input ReportInput) (*domain.DailyReport, error)
	UpdateReport(ctx context.Context, actor *domain.User, reportID primitive.ObjectID, input ReportInput) (*domain.DailyReport, error)
	ListForStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) (*ReportList, error)
	ReplyFeedback(ctx context.Context, actor *domain.User, reportID primitive.ObjectID, feedback string) (*domain.DailyReport, error)
	RequestAttachmentUpload(ctx context.Context, actor *domain.User, reportID primitive.ObjectID, fileName, contentType string, size int64) (*AttachmentUpload, error)
	GetAttachmentDownloadURL(ctx context.Context, actor *domain.User, attachmentID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type reportService struct {
	reportRepo     repository.DailyReportRepository
	attachmentRepo repository.ReportAttachmentRepository
	userRepo       repository.UserRepository
	access         AccessPolicy
	fileStorage    storage.FileStorage
}

// NewReportService creates a new instance of reportService.
func NewReportService(
	reportRepo repository.DailyReportRepository,
	attachmentRepo repository.ReportAttachmentRepository,
	userRepo repository.UserRepository,
	access AccessPolicy,
	fileStorage storage.FileStorage,
) ReportService {
	return &reportService{
		reportRepo:     reportRepo,
		attachmentRepo: attachmentRepo,
		userRepo:       userRepo,
		access:         access,
		fileStorage:    fileStorage,
	}
}

// CreateReport lets a student write a report in their own name.
func (s *reportService) CreateReport(ctx context.Context, actor *domain.User, input ReportInput) (*domain.DailyReport, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	report := &domain.DailyReport{
		StudentID: actor.ID,
		Date:      input.Date,
		Title:     input.Title,
		Memo:      input.Memo,
		Flag:      input.Flag,
	}
	id, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, err
	}
	report.ID = id
	return report, nil
}

// UpdateReport lets a student edit their own report. Feedback fields are
// untouched; only teachers write those via ReplyFeedback.
func (s *reportService) UpdateReport(ctx context.Context, actor *domain.User, reportID primitive.ObjectID, input ReportInput) (*domain.DailyReport, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if report.StudentID != actor.ID {
		return nil, ErrForbidden
	}

	report.Date = input.Date
	report.Title = input.Title
	report.Memo = input.Memo
	report.Flag = input.Flag
	if err := s.reportRepo.Update(ctx, report); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// ListForStudent returns the student's reports split into pending and
// replied, gated by the visibility predicate.
func (s *reportService) ListForStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) (*ReportList, error) {
	if err := s.access.RequireStudentAccess(ctx, actor, studentID); err != nil {
		return nil, err
	}

	reports, err := s.reportRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	list := &ReportList{Pending: []ReportView{}, Replied: []ReportView{}}
	teacherNames := map[primitive.ObjectID]string{}
	for i := range reports {
		view, err := s.buildView(ctx, &reports[i], teacherNames)
		if err != nil {
			return nil, err
		}
		if hasFeedback(reports[i].Feedback) {
			list.Replied = append(list.Replied, *view)
		} else {
			list.Pending = append(list.Pending, *view)
		}
	}
	return list, nil
}

// ReplyFeedback records a teacher's feedback on a report. Only teachers
// reply, and only for students assigned to them.
func (s *reportService) ReplyFeedback(ctx context.Context, actor *domain.User, reportID primitive.ObjectID, feedback string) (*domain.DailyReport, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.IsTeacher() {
		return nil, ErrForbidden
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if err := s.access.RequireStudentAccess(ctx, actor, report.StudentID); err != nil {
		return nil, err
	}

	report.Feedback = &feedback
	teacherID := actor.ID
	report.TeacherID = &teacherID
	if err := s.reportRepo.Update(ctx, report); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// RequestAttachmentUpload records attachment metadata and hands back a
// presigned PUT URL. Only the report's author may attach files.
func (s *reportService) RequestAttachmentUpload(ctx context.Context, actor *domain.User, reportID primitive.ObjectID, fileName, contentType string, size int64) (*AttachmentUpload, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if report.StudentID != actor.ID {
		return nil, ErrForbidden
	}

	objectKey := fmt.Sprintf("reports/%s/%s/%s", report.StudentID.Hex(), report.ID.Hex(), uuid.NewString())
	attachment := &domain.ReportAttachment{
		ReportID:    report.ID,
		StudentID:   report.StudentID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}
	id, err := s.attachmentRepo.Create(ctx, attachment)
	if err != nil {
		return nil, err
	}
	attachment.ID = id

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &AttachmentUpload{Attachment: *attachment, UploadURL: uploadURL}, nil
}

// GetAttachmentDownloadURL returns a presigned GET URL for an attachment,
// gated by visibility over the owning student.
func (s *reportService) GetAttachmentDownloadURL(ctx context.Context, actor *domain.User, attachmentID primitive.ObjectID) (string, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAttachmentNotFound
		}
		return "", err
	}
	if err := s.access.RequireStudentAccess(ctx, actor, attachment.StudentID); err != nil {
		return "", err
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, attachment.S3ObjectKey, storage.DefaultPresignedURLExpiry)
}

func (s *reportService) buildView(ctx context.Context, report *domain.DailyReport, teacherNames map[primitive.ObjectID]string) (*ReportView, error) {
	view := &ReportView{DailyReport: *report, Attachments: []domain.ReportAttachment{}}

	attachments, err := s.attachmentRepo.GetByReportID(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	view.Attachments = attachments

	if report.TeacherID != nil {
		name, ok := teacherNames[*report.TeacherID]
		if !ok {
			if teacher, err := s.userRepo.GetByID(ctx, *report.TeacherID); err == nil {
				name = teacher.Name
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			teacherNames[*report.TeacherID] = name
		}
		view.TeacherName = name
	}
	return view, nil
}

// hasFeedback reports whether a reply has real content; blank strings count
// as pending.
func hasFeedback(feedback *string) bool {
	return feedback != nil && strings.TrimSpace(*feedback) != ""
}
