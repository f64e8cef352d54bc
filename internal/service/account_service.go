package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrInvalidTrainingStatus = errors.New("invalid training status")
)

// AccountView is one row of the account screens. Teacher identity and
// progress are filled for student rows only.
type AccountView struct {
	ID             primitive.ObjectID  `json:"id"`
	EmployeeID     string              `json:"employeeId"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Role           domain.Role         `json:"role"`
	Flag           domain.AccountFlag  `json:"flag"`
	TrainingStatus string              `json:"trainingStatus,omitempty"`
	TeacherID      *primitive.ObjectID `json:"teacherId,omitempty"`
	TeacherName    string              `json:"teacherName,omitempty"`
	Progress       *int                `json:"progress,omitempty"`
}

// AccountSummary is the dashboard counter block. For admins the counts run
// over all users; for teachers they run over their assigned students only
// (role counters stay zero).
type AccountSummary struct {
	AdminCount    int64 `json:"adminCount"`
	TeacherCount  int64 `json:"teacherCount"`
	StudentCount  int64 `json:"studentCount"`
	ActiveCount   int64 `json:"activeCount"`
	DisabledCount int64 `json:"disabledCount"`
}

// --- Service Interface ---

type AccountService interface {
	BuildSummary(ctx context.Context, actor *domain.User) (*AccountSummary, error)
	ListAccounts(ctx context.Context, actor *domain.User) ([]AccountView, error)
	ListTeachers(ctx context.Context, actor *domain.User) ([]AccountView, error)
	GetAccount(ctx context.Context, actor *domain.User, userID primitive.ObjectID) (*AccountView, error)
	UpdateTrainingStatus(ctx context.Context, actor *domain.User, studentID primitive.ObjectID, status string) (*AccountView, error)
}

// --- Service Implementation ---

type accountService struct {
	userRepo         repository.UserRepository
	assignmentRepo   repository.StudentAssignmentRepository
	trainingPlanRepo repository.StudentTrainingPlanRepository
	trainingTaskRepo repository.StudentTrainingTaskRepository
	access           AccessPolicy
}

// NewAccountService creates a new instance of accountService.
func NewAccountService(
	userRepo repository.UserRepository,
	assignmentRepo repository.StudentAssignmentRepository,
	trainingPlanRepo repository.StudentTrainingPlanRepository,
	trainingTaskRepo repository.StudentTrainingTaskRepository,
	access AccessPolicy,
) AccountService {
	return &accountService{
		userRepo:         userRepo,
		assignmentRepo:   assignmentRepo,
		trainingPlanRepo: trainingPlanRepo,
		trainingTaskRepo: trainingTaskRepo,
		access:           access,
	}
}

// BuildSummary counts accounts for the dashboard.
func (s *accountService) BuildSummary(ctx context.Context, actor *domain.User) (*AccountSummary, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	summary := &AccountSummary{}

	if actor.IsAdmin() {
		var err error
		if summary.AdminCount, err = s.userRepo.CountByRole(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}
		if summary.TeacherCount, err = s.userRepo.CountByRole(ctx, domain.RoleTeacher); err != nil {
			return nil, err
		}
		if summary.StudentCount, err = s.userRepo.CountByRole(ctx, domain.RoleStudent); err != nil {
			return nil, err
		}
		if summary.ActiveCount, err = s.userRepo.CountByFlag(ctx, domain.FlagActive); err != nil {
			return nil, err
		}
		if summary.DisabledCount, err = s.userRepo.CountByFlag(ctx, domain.FlagDisabled); err != nil {
			return nil, err
		}
		return summary, nil
	}

	students, err := s.assignedStudents(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	summary.StudentCount = int64(len(students))
	for _, student := range students {
		if student.Flag == domain.FlagActive {
			summary.ActiveCount++
		} else {
			summary.DisabledCount++
		}
	}
	return summary, nil
}

// ListAccounts returns all users for admins and the assigned students for
// teachers. Student rows carry the assigned teacher and computed progress;
// teacher identities are resolved in one batch instead of per row.
func (s *accountService) ListAccounts(ctx context.Context, actor *domain.User) ([]AccountView, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	var users []domain.User
	var err error
	if actor.IsAdmin() {
		users, err = s.userRepo.GetAll(ctx)
	} else {
		users, err = s.assignedStudents(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	studentIDs := make([]primitive.ObjectID, 0, len(users))
	for _, user := range users {
		if user.IsStudent() {
			studentIDs = append(studentIDs, user.ID)
		}
	}
	assignments, err := s.assignmentRepo.GetByStudentIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	teacherByStudent := make(map[primitive.ObjectID]primitive.ObjectID, len(assignments))
	teacherIDs := make([]primitive.ObjectID, 0, len(assignments))
	for _, a := range assignments {
		teacherByStudent[a.StudentID] = a.TeacherID
		teacherIDs = append(teacherIDs, a.TeacherID)
	}
	teachers, err := s.userRepo.GetByIDs(ctx, teacherIDs)
	if err != nil {
		return nil, err
	}
	teacherNames := make(map[primitive.ObjectID]string, len(teachers))
	for _, teacher := range teachers {
		teacherNames[teacher.ID] = teacher.Name
	}

	views := make([]AccountView, 0, len(users))
	for i := range users {
		view := baseView(&users[i])
		if users[i].IsStudent() {
			if teacherID, ok := teacherByStudent[users[i].ID]; ok {
				id := teacherID
				view.TeacherID = &id
				view.TeacherName = teacherNames[teacherID]
			}
			progress, err := s.computeProgress(ctx, users[i].ID)
			if err != nil {
				return nil, err
			}
			view.Progress = &progress
		}
		views = append(views, view)
	}
	return views, nil
}

// ListTeachers returns the teacher accounts, for picking an assignee during
// student registration. Any authenticated user may call it.
func (s *accountService) ListTeachers(ctx context.Context, actor *domain.User) ([]AccountView, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	teachers, err := s.userRepo.GetByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, err
	}
	views := make([]AccountView, 0, len(teachers))
	for i := range teachers {
		views = append(views, baseView(&teachers[i]))
	}
	return views, nil
}

// GetAccount returns one account. Student targets are gated by the
// visibility predicate; staff targets are admin-only.
func (s *accountService) GetAccount(ctx context.Context, actor *domain.User, userID primitive.ObjectID) (*AccountView, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if user.IsStudent() {
		if err := s.access.RequireStudentAccess(ctx, actor, user.ID); err != nil {
			return nil, err
		}
	} else if !actor.IsAdmin() && actor.ID != user.ID {
		return nil, ErrForbidden
	}

	return s.buildView(ctx, user)
}

// UpdateTrainingStatus flips a student between the in-training and
// training-completed labels. Staff only; teachers may touch only their own
// students.
func (s *accountService) UpdateTrainingStatus(ctx context.Context, actor *domain.User, studentID primitive.ObjectID, status string) (*AccountView, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if status != domain.TrainingStatusInProgress && status != domain.TrainingStatusCompleted {
		return nil, ErrInvalidTrainingStatus
	}

	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !user.IsStudent() {
		return nil, ErrUserNotStudent
	}
	if err := s.access.RequireStudentAccess(ctx, actor, user.ID); err != nil {
		return nil, err
	}

	user.TrainingStatus = status
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.buildView(ctx, user)
}

func (s *accountService) assignedStudents(ctx context.Context, teacherID primitive.ObjectID) ([]domain.User, error) {
	assignments, err := s.assignmentRepo.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []domain.User{}, nil
	}
	ids := make([]primitive.ObjectID, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.StudentID)
	}
	return s.userRepo.GetByIDs(ctx, ids)
}

// baseView maps the fields common to every account row.
func baseView(user *domain.User) AccountView {
	return AccountView{
		ID:             user.ID,
		EmployeeID:     user.EmployeeID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		Flag:           user.Flag,
		TrainingStatus: user.TrainingStatus,
	}
}

func (s *accountService) buildView(ctx context.Context, user *domain.User) (*AccountView, error) {
	view := baseView(user)
	if !user.IsStudent() {
		return &view, nil
	}

	if assignment, err := s.assignmentRepo.GetByStudentID(ctx, user.ID); err == nil {
		id := assignment.TeacherID
		view.TeacherID = &id
		if teacher, err := s.userRepo.GetByID(ctx, assignment.TeacherID); err == nil {
			view.TeacherName = teacher.Name
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	progress, err := s.computeProgress(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	view.Progress = &progress
	return &view, nil
}

// computeProgress averages per-plan completion with integer arithmetic:
// each plan contributes truncate(completed*100/total), zero-task plans
// contribute 0 and still count, and the mean over plans is truncated too.
// A student with no plans sits at 0.
func (s *accountService) computeProgress(ctx context.Context, studentID primitive.ObjectID) (int, error) {
	plans, err := s.trainingPlanRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return 0, err
	}
	if len(plans) == 0 {
		return 0, nil
	}

	sum := 0
	for _, plan := range plans {
		tasks, err := s.trainingTaskRepo.GetByPlanID(ctx, plan.ID)
		if err != nil {
			return 0, err
		}
		if len(tasks) == 0 {
			continue
		}
		completed := 0
		for _, task := range tasks {
			if task.Status == domain.TaskStatusCompleted {
				completed++
			}
		}
		sum += completed * 100 / len(tasks)
	}
	return sum / len(plans), nil
}
