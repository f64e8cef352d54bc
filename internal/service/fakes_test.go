package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

// In-memory repository fakes backing the service tests. They mirror the
// contracts of the mongo implementations, including ErrNotFound and the
// unique-key ErrConflict behavior.

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copy := u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := u
	return &copy, nil
}

func (r *memUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetAll(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	users, _ := r.GetByRole(ctx, role)
	return int64(len(users)), nil
}

func (r *memUserRepo) CountByFlag(ctx context.Context, flag domain.AccountFlag) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Flag == flag {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]domain.StudentAssignment // keyed by StudentID
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assignments: map[primitive.ObjectID]domain.StudentAssignment{}}
}

func (r *memAssignmentRepo) Create(ctx context.Context, assignment *domain.StudentAssignment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[assignment.StudentID]; ok {
		return primitive.NilObjectID, repository.ErrConflict
	}
	assignment.ID = primitive.NewObjectID()
	r.assignments[assignment.StudentID] = *assignment
	return assignment.ID, nil
}

func (r *memAssignmentRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) (*domain.StudentAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[studentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := a
	return &copy, nil
}

func (r *memAssignmentRepo) GetByStudentIDs(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.StudentAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.StudentAssignment{}
	for _, id := range studentIDs {
		if a, ok := r.assignments[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAssignmentRepo) GetByTeacherID(ctx context.Context, teacherID primitive.ObjectID) ([]domain.StudentAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.StudentAssignment{}
	for _, a := range r.assignments {
		if a.TeacherID == teacherID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memPlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]domain.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: map[primitive.ObjectID]domain.Plan{}}
}

func (r *memPlanRepo) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	r.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (r *memPlanRepo) GetAll(ctx context.Context) ([]domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Plan{}
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	r.plans[plan.ID] = *plan
	return nil
}

func (r *memPlanRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type memSectionRepo struct {
	mu       sync.Mutex
	sections map[primitive.ObjectID]domain.PlanSection
}

func newMemSectionRepo() *memSectionRepo {
	return &memSectionRepo{sections: map[primitive.ObjectID]domain.PlanSection{}}
}

func (r *memSectionRepo) Create(ctx context.Context, section *domain.PlanSection) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	section.ID = primitive.NewObjectID()
	r.sections[section.ID] = *section
	return section.ID, nil
}

func (r *memSectionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sections[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := s
	return &copy, nil
}

func (r *memSectionRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PlanSection{}
	for _, id := range ids {
		if s, ok := r.sections[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSectionRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PlanSection{}
	for _, s := range r.sections {
		if s.PlanID == planID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSectionRepo) Update(ctx context.Context, section *domain.PlanSection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[section.ID]; !ok {
		return repository.ErrNotFound
	}
	r.sections[section.ID] = *section
	return nil
}

func (r *memSectionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sections[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sections, id)
	return nil
}

func (r *memSectionRepo) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sections {
		if s.PlanID == planID {
			delete(r.sections, id)
		}
	}
	return nil
}

type memTopicRepo struct {
	mu     sync.Mutex
	topics map[primitive.ObjectID]domain.PlanTopic
}

func newMemTopicRepo() *memTopicRepo {
	return &memTopicRepo{topics: map[primitive.ObjectID]domain.PlanTopic{}}
}

func (r *memTopicRepo) Create(ctx context.Context, topic *domain.PlanTopic) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	topic.ID = primitive.NewObjectID()
	r.topics[topic.ID] = *topic
	return topic.ID, nil
}

func (r *memTopicRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := t
	return &copy, nil
}

func (r *memTopicRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PlanTopic{}
	for _, id := range ids {
		if t, ok := r.topics[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTopicRepo) GetBySectionID(ctx context.Context, sectionID primitive.ObjectID) ([]domain.PlanTopic, error) {
	return r.GetBySectionIDs(ctx, []primitive.ObjectID{sectionID})
}

func (r *memTopicRepo) GetBySectionIDs(ctx context.Context, sectionIDs []primitive.ObjectID) ([]domain.PlanTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PlanTopic{}
	for _, t := range r.topics {
		for _, id := range sectionIDs {
			if t.SectionID == id {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (r *memTopicRepo) Update(ctx context.Context, topic *domain.PlanTopic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[topic.ID]; !ok {
		return repository.ErrNotFound
	}
	r.topics[topic.ID] = *topic
	return nil
}

func (r *memTopicRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.topics, id)
	return nil
}

func (r *memTopicRepo) DeleteBySectionIDs(ctx context.Context, sectionIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.topics {
		for _, sid := range sectionIDs {
			if t.SectionID == sid {
				delete(r.topics, id)
				break
			}
		}
	}
	return nil
}

type memTodoRepo struct {
	mu    sync.Mutex
	todos map[primitive.ObjectID]domain.PlanTodo
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{todos: map[primitive.ObjectID]domain.PlanTodo{}}
}

func (r *memTodoRepo) Create(ctx context.Context, todo *domain.PlanTodo) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo.ID = primitive.NewObjectID()
	r.todos[todo.ID] = *todo
	return todo.ID, nil
}

func (r *memTodoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTodo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := t
	return &copy, nil
}

func (r *memTodoRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanTodo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PlanTodo{}
	for _, id := range ids {
		if t, ok := r.todos[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTodoRepo) GetByTopicID(ctx context.Context, topicID primitive.ObjectID) ([]domain.PlanTodo, error) {
	return r.GetByTopicIDs(ctx, []primitive.ObjectID{topicID})
}

func (r *memTodoRepo) GetByTopicIDs(ctx context.Context, topicIDs []primitive.ObjectID) ([]domain.PlanTodo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.PlanTodo{}
	for _, t := range r.todos {
		for _, id := range topicIDs {
			if t.TopicID == id {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (r *memTodoRepo) Update(ctx context.Context, todo *domain.PlanTodo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[todo.ID]; !ok {
		return repository.ErrNotFound
	}
	r.todos[todo.ID] = *todo
	return nil
}

func (r *memTodoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *memTodoRepo) DeleteByTopicIDs(ctx context.Context, topicIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.todos {
		for _, tid := range topicIDs {
			if t.TopicID == tid {
				delete(r.todos, id)
				break
			}
		}
	}
	return nil
}

type memTrainingPlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]domain.StudentTrainingPlan
}

func newMemTrainingPlanRepo() *memTrainingPlanRepo {
	return &memTrainingPlanRepo{plans: map[primitive.ObjectID]domain.StudentTrainingPlan{}}
}

func (r *memTrainingPlanRepo) Create(ctx context.Context, plan *domain.StudentTrainingPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.StudentID == plan.StudentID && p.PlanID == plan.PlanID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	plan.ID = primitive.NewObjectID()
	r.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *memTrainingPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentTrainingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (r *memTrainingPlanRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.StudentTrainingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.StudentTrainingPlan{}
	for _, p := range r.plans {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memTrainingPlanRepo) GetByStudentAndPlanID(ctx context.Context, studentID, planID primitive.ObjectID) (*domain.StudentTrainingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.StudentID == studentID && p.PlanID == planID {
			copy := p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTrainingPlanRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type memTrainingTaskRepo struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]domain.StudentTrainingTask
	seq   int
}

func newMemTrainingTaskRepo() *memTrainingTaskRepo {
	return &memTrainingTaskRepo{tasks: map[primitive.ObjectID]domain.StudentTrainingTask{}}
}

func (r *memTrainingTaskRepo) CreateMany(ctx context.Context, tasks []domain.StudentTrainingTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range tasks {
		r.seq++
		// Deterministic ascending ids so insertion order is reconstructable.
		id, _ := primitive.ObjectIDFromHex(fmt.Sprintf("%024x", r.seq))
		tasks[i].ID = id
		r.tasks[id] = tasks[i]
	}
	return nil
}

func (r *memTrainingTaskRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentTrainingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := t
	return &copy, nil
}

func (r *memTrainingTaskRepo) GetByPlanID(ctx context.Context, studentTrainingPlanID primitive.ObjectID) ([]domain.StudentTrainingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.StudentTrainingTask{}
	for _, t := range r.tasks {
		if t.StudentTrainingPlanID == studentTrainingPlanID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTrainingTaskRepo) Update(ctx context.Context, task *domain.StudentTrainingTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return repository.ErrNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *memTrainingTaskRepo) DeleteByPlanID(ctx context.Context, studentTrainingPlanID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tasks {
		if t.StudentTrainingPlanID == studentTrainingPlanID {
			delete(r.tasks, id)
		}
	}
	return nil
}

type memReportRepo struct {
	mu      sync.Mutex
	reports map[primitive.ObjectID]domain.DailyReport
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: map[primitive.ObjectID]domain.DailyReport{}}
}

func (r *memReportRepo) Create(ctx context.Context, report *domain.DailyReport) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report.ID = primitive.NewObjectID()
	r.reports[report.ID] = *report
	return report.ID, nil
}

func (r *memReportRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := rep
	return &copy, nil
}

func (r *memReportRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.DailyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.DailyReport{}
	for _, rep := range r.reports {
		if rep.StudentID == studentID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *memReportRepo) Update(ctx context.Context, report *domain.DailyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[report.ID]; !ok {
		return repository.ErrNotFound
	}
	r.reports[report.ID] = *report
	return nil
}

func (r *memReportRepo) CountPendingFeedback(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rep := range r.reports {
		if rep.Feedback != nil {
			continue
		}
		for _, id := range studentIDs {
			if rep.StudentID == id {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *memReportRepo) CountAllPendingFeedback(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rep := range r.reports {
		if rep.Feedback == nil {
			n++
		}
	}
	return n, nil
}

type memQuestionRepo struct {
	mu        sync.Mutex
	questions map[primitive.ObjectID]domain.Question
}

func newMemQuestionRepo() *memQuestionRepo {
	return &memQuestionRepo{questions: map[primitive.ObjectID]domain.Question{}}
}

func (r *memQuestionRepo) Create(ctx context.Context, question *domain.Question) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	question.ID = primitive.NewObjectID()
	r.questions[question.ID] = *question
	return question.ID, nil
}

func (r *memQuestionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := q
	return &copy, nil
}

func (r *memQuestionRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Question{}
	for _, q := range r.questions {
		if q.StudentID == studentID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memQuestionRepo) Update(ctx context.Context, question *domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[question.ID]; !ok {
		return repository.ErrNotFound
	}
	r.questions[question.ID] = *question
	return nil
}

func (r *memQuestionRepo) CountPendingFeedback(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, q := range r.questions {
		if q.Feedback != nil {
			continue
		}
		for _, id := range studentIDs {
			if q.StudentID == id {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *memQuestionRepo) CountAllPendingFeedback(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, q := range r.questions {
		if q.Feedback == nil {
			n++
		}
	}
	return n, nil
}

type memAttachmentRepo struct {
	mu          sync.Mutex
	attachments map[primitive.ObjectID]domain.ReportAttachment
}

func newMemAttachmentRepo() *memAttachmentRepo {
	return &memAttachmentRepo{attachments: map[primitive.ObjectID]domain.ReportAttachment{}}
}

func (r *memAttachmentRepo) Create(ctx context.Context, attachment *domain.ReportAttachment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = primitive.NewObjectID()
	r.attachments[attachment.ID] = *attachment
	return attachment.ID, nil
}

func (r *memAttachmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ReportAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attachments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := a
	return &copy, nil
}

func (r *memAttachmentRepo) GetByReportID(ctx context.Context, reportID primitive.ObjectID) ([]domain.ReportAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ReportAttachment{}
	for _, a := range r.attachments {
		if a.ReportID == reportID {
			out = append(out, a)
		}
	}
	return out, nil
}

// noopTxnManager runs the callback directly; the fakes have no transactions.
type noopTxnManager struct{}

func (noopTxnManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeFileStorage returns deterministic URLs derived from the object key.
type fakeFileStorage struct{}

func (fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return nil
}
