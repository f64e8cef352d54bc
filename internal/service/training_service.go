package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

// --- Error Definitions ---
var (
	ErrStudentNotFound      = errors.New("student user not found")
	ErrUserNotStudent       = errors.New("target user is not a student")
	ErrPlanAlreadyAssigned  = errors.New("plan already assigned to this student")
	ErrTrainingPlanNotFound = errors.New("training plan not found")
	ErrTaskNotFound         = errors.New("training task not found")
)

// UpdateTaskInput carries the fields the tracker writes verbatim. Status is
// free text; no transition order is enforced.
type UpdateTaskInput struct {
	Status       string
	ProgressNote string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// TaskView is one task enriched with its originating todo's hierarchy
// position. The position fields drive presentation ordering; they stay nil
// when the template node has since been deleted.
type TaskView struct {
	ID               primitive.ObjectID `json:"id"`
	TodoID           primitive.ObjectID `json:"todoId"`
	TodoName         string             `json:"todoName,omitempty"`
	TopicName        string             `json:"topicName,omitempty"`
	TopicSortOrder   *int               `json:"topicSortOrder,omitempty"`
	SectionName      string             `json:"sectionName,omitempty"`
	SectionSortOrder *int               `json:"sectionSortOrder,omitempty"`
	DayIndex         *int               `json:"dayIndex,omitempty"`
	SortOrder        *int               `json:"sortOrder,omitempty"`
	Status           string             `json:"status"`
	ProgressNote     string             `json:"progressNote,omitempty"`
	StartedAt        *time.Time         `json:"startedAt,omitempty"`
	CompletedAt      *time.Time         `json:"completedAt,omitempty"`
}

// TrainingPlanView is one student plan instantiation with its template
// header fields and the task list in presentation order.
type TrainingPlanView struct {
	ID           primitive.ObjectID `json:"id"`
	StudentID    primitive.ObjectID `json:"studentId"`
	PlanID       primitive.ObjectID `json:"planId"`
	PlanName     string             `json:"planName,omitempty"`
	ExpectedDays *float64           `json:"expectedDays,omitempty"`
	Description  string             `json:"description,omitempty"`
	Status       string             `json:"status"`
	AssignedAt   time.Time          `json:"assignedAt"`
	AssignedBy   primitive.ObjectID `json:"assignedBy"`
	Tasks        []TaskView         `json:"tasks"`
}

// TrainingStats is the staff dashboard summary. Teacher callers see only
// their assigned students; admins see the whole population.
type TrainingStats struct {
	StudentsInTrainingCount int64 `json:"studentsInTrainingCount"`
	StudentsCompletedCount  int64 `json:"studentsCompletedCount"`
	UnrepliedReportsCount   int64 `json:"unrepliedReportsCount"`
	UnrepliedQuestionsCount int64 `json:"unrepliedQuestionsCount"`
}

// --- Service Interface ---

type TrainingService interface {
	AssignPlan(ctx context.Context, actor *domain.User, studentID, planID primitive.ObjectID) (*TrainingPlanView, error)
	ListForStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) ([]TrainingPlanView, error)
	UpdateTask(ctx context.Context, actor *domain.User, taskID primitive.ObjectID, input UpdateTaskInput) (*TaskView, error)
	DeletePlan(ctx context.Context, actor *domain.User, trainingPlanID primitive.ObjectID) error
	GetTrainingStats(ctx context.Context, actor *domain.User) (*TrainingStats, error)
}

// --- Service Implementation ---

type trainingService struct {
	trainingPlanRepo repository.StudentTrainingPlanRepository
	trainingTaskRepo repository.StudentTrainingTaskRepository
	userRepo         repository.UserRepository
	planRepo         repository.PlanRepository
	sectionRepo      repository.PlanSectionRepository
	topicRepo        repository.PlanTopicRepository
	todoRepo         repository.PlanTodoRepository
	reportRepo       repository.DailyReportRepository
	questionRepo     repository.QuestionRepository
	assignmentRepo   repository.StudentAssignmentRepository
	access           AccessPolicy
	txnManager       repository.TransactionManager
}

// NewTrainingService creates a new instance of trainingService.
func NewTrainingService(
	trainingPlanRepo repository.StudentTrainingPlanRepository,
	trainingTaskRepo repository.StudentTrainingTaskRepository,
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	sectionRepo repository.PlanSectionRepository,
	topicRepo repository.PlanTopicRepository,
	todoRepo repository.PlanTodoRepository,
	reportRepo repository.DailyReportRepository,
	questionRepo repository.QuestionRepository,
	assignmentRepo repository.StudentAssignmentRepository,
	access AccessPolicy,
	txnManager repository.TransactionManager,
) TrainingService {
	return &trainingService{
		trainingPlanRepo: trainingPlanRepo,
		trainingTaskRepo: trainingTaskRepo,
		userRepo:         userRepo,
		planRepo:         planRepo,
		sectionRepo:      sectionRepo,
		topicRepo:        topicRepo,
		todoRepo:         todoRepo,
		reportRepo:       reportRepo,
		questionRepo:     questionRepo,
		assignmentRepo:   assignmentRepo,
		access:           access,
		txnManager:       txnManager,
	}
}

// === Assignment Engine ===

// AssignPlan instantiates a template for one student: the template's todos
// are flattened into (dayIndex, sortOrder) order and one independent task
// row is created per todo. Plan row and task rows are written inside one
// transaction; a duplicate (student, plan) pair fails with
// ErrPlanAlreadyAssigned.
func (s *trainingService) AssignPlan(ctx context.Context, actor *domain.User, studentID, planID primitive.ObjectID) (*TrainingPlanView, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if !student.IsStudent() {
		return nil, ErrUserNotStudent
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	// Advisory pre-check; the unique (studentId, planId) index is what
	// actually decides concurrent races.
	if _, err := s.trainingPlanRepo.GetByStudentAndPlanID(ctx, studentID, planID); err == nil {
		return nil, ErrPlanAlreadyAssigned
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	todos, err := s.flattenTemplate(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	trainingPlan := &domain.StudentTrainingPlan{
		StudentID:  studentID,
		PlanID:     planID,
		Status:     domain.TaskStatusNotStarted,
		AssignedAt: time.Now().UTC(),
		AssignedBy: actor.ID,
	}

	err = s.txnManager.WithinTransaction(ctx, func(ctx context.Context) error {
		id, err := s.trainingPlanRepo.Create(ctx, trainingPlan)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrPlanAlreadyAssigned
			}
			return err
		}
		trainingPlan.ID = id

		tasks := make([]domain.StudentTrainingTask, 0, len(todos))
		for _, todo := range todos {
			tasks = append(tasks, domain.StudentTrainingTask{
				StudentTrainingPlanID: id,
				TodoID:                todo.ID,
				Status:                domain.TaskStatusNotStarted,
			})
		}
		return s.trainingTaskRepo.CreateMany(ctx, tasks)
	})
	if err != nil {
		return nil, err
	}

	return s.buildPlanView(ctx, trainingPlan)
}

// flattenTemplate collects the plan's todos across all sections and topics
// and sorts them by (dayIndex, sortOrder), nulls last. Section/topic
// grouping is ignored here; it only matters for presentation ordering.
func (s *trainingService) flattenTemplate(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanTodo, error) {
	sections, err := s.sectionRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	topics, err := s.topicRepo.GetBySectionIDs(ctx, sectionIDs(sections))
	if err != nil {
		return nil, err
	}
	todos, err := s.todoRepo.GetByTopicIDs(ctx, topicIDs(topics))
	if err != nil {
		return nil, err
	}
	domain.SortTodos(todos)
	return todos, nil
}

// === Listing ===

func (s *trainingService) ListForStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) ([]TrainingPlanView, error) {
	if err := s.access.RequireStudentAccess(ctx, actor, studentID); err != nil {
		return nil, err
	}

	plans, err := s.trainingPlanRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	views := make([]TrainingPlanView, 0, len(plans))
	for i := range plans {
		view, err := s.buildPlanView(ctx, &plans[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// === Task Lifecycle Tracker ===

// UpdateTask writes status, note and timestamps verbatim. Students may only
// touch tasks under their own plan; staff may touch any task.
func (s *trainingService) UpdateTask(ctx context.Context, actor *domain.User, taskID primitive.ObjectID, input UpdateTaskInput) (*TaskView, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	task, err := s.trainingTaskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	plan, err := s.trainingPlanRepo.GetByID(ctx, task.StudentTrainingPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingPlanNotFound
		}
		return nil, err
	}

	if actor.IsStudent() {
		if plan.StudentID != actor.ID {
			return nil, ErrForbidden
		}
	} else if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	task.Status = input.Status
	task.ProgressNote = input.ProgressNote
	task.StartedAt = input.StartedAt
	task.CompletedAt = input.CompletedAt
	if err := s.trainingTaskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	views, err := s.buildTaskViews(ctx, []domain.StudentTrainingTask{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeletePlan removes one plan instantiation and its tasks transactionally.
func (s *trainingService) DeletePlan(ctx context.Context, actor *domain.User, trainingPlanID primitive.ObjectID) error {
	if err := requireStaff(actor); err != nil {
		return err
	}

	if _, err := s.trainingPlanRepo.GetByID(ctx, trainingPlanID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingPlanNotFound
		}
		return err
	}

	return s.txnManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.trainingTaskRepo.DeleteByPlanID(ctx, trainingPlanID); err != nil {
			return err
		}
		return s.trainingPlanRepo.Delete(ctx, trainingPlanID)
	})
}

// === Views ===

// buildPlanView assembles one instantiation with template header fields and
// tasks in presentation order. A deleted template degrades gracefully: the
// view keeps the instantiation's own fields.
func (s *trainingService) buildPlanView(ctx context.Context, plan *domain.StudentTrainingPlan) (*TrainingPlanView, error) {
	view := &TrainingPlanView{
		ID:         plan.ID,
		StudentID:  plan.StudentID,
		PlanID:     plan.PlanID,
		Status:     plan.Status,
		AssignedAt: plan.AssignedAt,
		AssignedBy: plan.AssignedBy,
	}

	if template, err := s.planRepo.GetByID(ctx, plan.PlanID); err == nil {
		view.PlanName = template.Name
		view.ExpectedDays = template.ExpectedDays
		view.Description = template.Description
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	tasks, err := s.trainingTaskRepo.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	view.Tasks, err = s.buildTaskViews(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// buildTaskViews resolves each task's originating todo, topic and section,
// then sorts by (dayIndex, section sortOrder, topic sortOrder, todo
// sortOrder, task id) with nulls last. Ordering always derives from the
// template hierarchy, never from task-table order.
func (s *trainingService) buildTaskViews(ctx context.Context, tasks []domain.StudentTrainingTask) ([]TaskView, error) {
	todoIDs := make([]primitive.ObjectID, 0, len(tasks))
	for _, task := range tasks {
		todoIDs = append(todoIDs, task.TodoID)
	}
	todos, err := s.todoRepo.GetByIDs(ctx, todoIDs)
	if err != nil {
		return nil, err
	}
	todoMap := make(map[primitive.ObjectID]domain.PlanTodo, len(todos))
	tIDs := make([]primitive.ObjectID, 0, len(todos))
	for _, todo := range todos {
		todoMap[todo.ID] = todo
		tIDs = append(tIDs, todo.TopicID)
	}

	topics, err := s.topicRepo.GetByIDs(ctx, tIDs)
	if err != nil {
		return nil, err
	}
	topicMap := make(map[primitive.ObjectID]domain.PlanTopic, len(topics))
	secIDs := make([]primitive.ObjectID, 0, len(topics))
	for _, topic := range topics {
		topicMap[topic.ID] = topic
		secIDs = append(secIDs, topic.SectionID)
	}

	sections, err := s.sectionRepo.GetByIDs(ctx, secIDs)
	if err != nil {
		return nil, err
	}
	sectionMap := make(map[primitive.ObjectID]domain.PlanSection, len(sections))
	for _, section := range sections {
		sectionMap[section.ID] = section
	}

	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		view := TaskView{
			ID:           task.ID,
			TodoID:       task.TodoID,
			Status:       task.Status,
			ProgressNote: task.ProgressNote,
			StartedAt:    task.StartedAt,
			CompletedAt:  task.CompletedAt,
		}
		if todo, ok := todoMap[task.TodoID]; ok {
			view.TodoName = todo.Name
			view.DayIndex = todo.DayIndex
			view.SortOrder = todo.SortOrder
			if topic, ok := topicMap[todo.TopicID]; ok {
				view.TopicName = topic.Name
				view.TopicSortOrder = topic.SortOrder
				if section, ok := sectionMap[topic.SectionID]; ok {
					view.SectionName = section.Name
					view.SectionSortOrder = section.SortOrder
				}
			}
		}
		views = append(views, view)
	}

	sortTaskViews(views)
	return views, nil
}

// sortTaskViews applies the five-key presentation comparator.
func sortTaskViews(views []TaskView) {
	sort.SliceStable(views, func(i, j int) bool {
		if c := domain.CompareIntPtr(views[i].DayIndex, views[j].DayIndex); c != 0 {
			return c < 0
		}
		if c := domain.CompareIntPtr(views[i].SectionSortOrder, views[j].SectionSortOrder); c != 0 {
			return c < 0
		}
		if c := domain.CompareIntPtr(views[i].TopicSortOrder, views[j].TopicSortOrder); c != 0 {
			return c < 0
		}
		if c := domain.CompareIntPtr(views[i].SortOrder, views[j].SortOrder); c != 0 {
			return c < 0
		}
		return views[i].ID.Hex() < views[j].ID.Hex()
	})
}

// === Stats ===

// GetTrainingStats builds the staff dashboard counters, scoped to the
// teacher's assigned students or the whole population for admins.
func (s *trainingService) GetTrainingStats(ctx context.Context, actor *domain.User) (*TrainingStats, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	stats := &TrainingStats{}

	if actor.IsTeacher() {
		assignments, err := s.assignmentRepo.GetByTeacherID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if len(assignments) == 0 {
			return stats, nil
		}
		studentIDs := make([]primitive.ObjectID, 0, len(assignments))
		for _, a := range assignments {
			studentIDs = append(studentIDs, a.StudentID)
		}

		if stats.UnrepliedReportsCount, err = s.reportRepo.CountPendingFeedback(ctx, studentIDs); err != nil {
			return nil, err
		}
		if stats.UnrepliedQuestionsCount, err = s.questionRepo.CountPendingFeedback(ctx, studentIDs); err != nil {
			return nil, err
		}

		students, err := s.userRepo.GetByIDs(ctx, studentIDs)
		if err != nil {
			return nil, err
		}
		countTrainingStatuses(students, stats)
		return stats, nil
	}

	var err error
	if stats.UnrepliedReportsCount, err = s.reportRepo.CountAllPendingFeedback(ctx); err != nil {
		return nil, err
	}
	if stats.UnrepliedQuestionsCount, err = s.questionRepo.CountAllPendingFeedback(ctx); err != nil {
		return nil, err
	}

	students, err := s.userRepo.GetByRole(ctx, domain.RoleStudent)
	if err != nil {
		return nil, err
	}
	countTrainingStatuses(students, stats)
	return stats, nil
}

func countTrainingStatuses(students []domain.User, stats *TrainingStats) {
	for _, student := range students {
		switch student.TrainingStatus {
		case domain.TrainingStatusInProgress:
			stats.StudentsInTrainingCount++
		case domain.TrainingStatusCompleted:
			stats.StudentsCompletedCount++
		}
	}
}
