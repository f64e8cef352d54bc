package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TransactionManager runs a function inside a single all-or-nothing
// transaction. Repository calls made with the callback's context join the
// transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	CountByFlag(ctx context.Context, flag domain.AccountFlag) (int64, error)
	Update(ctx context.Context, user *domain.User) error
}

// StudentAssignmentRepository manages the student↔teacher relation.
type StudentAssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.StudentAssignment) (primitive.ObjectID, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) (*domain.StudentAssignment, error)
	GetByStudentIDs(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.StudentAssignment, error)
	GetByTeacherID(ctx context.Context, teacherID primitive.ObjectID) ([]domain.StudentAssignment, error)
}

// PlanRepository defines the interface for plan template data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetAll(ctx context.Context) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PlanSectionRepository defines the interface for plan section data.
type PlanSectionRepository interface {
	Create(ctx context.Context, section *domain.PlanSection) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanSection, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanSection, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSection, error)
	Update(ctx context.Context, section *domain.PlanSection) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}

// PlanTopicRepository defines the interface for plan topic data.
type PlanTopicRepository interface {
	Create(ctx context.Context, topic *domain.PlanTopic) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTopic, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanTopic, error)
	GetBySectionID(ctx context.Context, sectionID primitive.ObjectID) ([]domain.PlanTopic, error)
	GetBySectionIDs(ctx context.Context, sectionIDs []primitive.ObjectID) ([]domain.PlanTopic, error)
	Update(ctx context.Context, topic *domain.PlanTopic) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySectionIDs(ctx context.Context, sectionIDs []primitive.ObjectID) error
}

// PlanTodoRepository defines the interface for plan todo data.
type PlanTodoRepository interface {
	Create(ctx context.Context, todo *domain.PlanTodo) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTodo, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanTodo, error)
	GetByTopicID(ctx context.Context, topicID primitive.ObjectID) ([]domain.PlanTodo, error)
	GetByTopicIDs(ctx context.Context, topicIDs []primitive.ObjectID) ([]domain.PlanTodo, error)
	Update(ctx context.Context, todo *domain.PlanTodo) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByTopicIDs(ctx context.Context, topicIDs []primitive.ObjectID) error
}

// StudentTrainingPlanRepository defines the interface for per-student plan
// instantiations. Create must fail with ErrConflict when a row for the same
// (studentId, planId) pair already exists; a unique compound index backs
// this so concurrent duplicate assignments cannot both succeed.
type StudentTrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.StudentTrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentTrainingPlan, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.StudentTrainingPlan, error)
	GetByStudentAndPlanID(ctx context.Context, studentID, planID primitive.ObjectID) (*domain.StudentTrainingPlan, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StudentTrainingTaskRepository defines the interface for per-student tasks.
type StudentTrainingTaskRepository interface {
	CreateMany(ctx context.Context, tasks []domain.StudentTrainingTask) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentTrainingTask, error)
	GetByPlanID(ctx context.Context, studentTrainingPlanID primitive.ObjectID) ([]domain.StudentTrainingTask, error)
	Update(ctx context.Context, task *domain.StudentTrainingTask) error
	DeleteByPlanID(ctx context.Context, studentTrainingPlanID primitive.ObjectID) error
}

// DailyReportRepository defines the interface for daily report data.
type DailyReportRepository interface {
	Create(ctx context.Context, report *domain.DailyReport) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyReport, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.DailyReport, error)
	Update(ctx context.Context, report *domain.DailyReport) error
	CountPendingFeedback(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error)
	CountAllPendingFeedback(ctx context.Context) (int64, error)
}

// QuestionRepository defines the interface for question data.
type QuestionRepository interface {
	Create(ctx context.Context, question *domain.Question) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Question, error)
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Question, error)
	Update(ctx context.Context, question *domain.Question) error
	CountPendingFeedback(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error)
	CountAllPendingFeedback(ctx context.Context) (int64, error)
}

// ReportAttachmentRepository defines the interface for report attachment
// metadata. The files themselves live in object storage.
type ReportAttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.ReportAttachment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ReportAttachment, error)
	GetByReportID(ctx context.Context, reportID primitive.ObjectID) ([]domain.ReportAttachment, error)
}
