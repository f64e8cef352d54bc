package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionInput carries the student-editable question fields.
type QuestionInput struct {
	Date    time.Time
	Title   string
	Content string
}

// QuestionView is a question enriched with the answering teacher's name.
type QuestionView struct {
	domain.Question
	TeacherName string `json:"teacherName,omitempty"`
}

// QuestionList splits a student's questions into unanswered and answered.
type QuestionList struct {
	Pending []QuestionView `json:"pending"`
	Replied []QuestionView `json:"replied"`
}

// --- Service Interface ---

type QuestionService interface {
	CreateQuestion(ctx context.Context, actor *domain.User, input QuestionInput) (*domain.Question, error)
	UpdateQuestion(ctx context.Context, actor *domain.User, questionID primitive.ObjectID, input QuestionInput) (*domain.Question, error)
	ListForStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) (*QuestionList, error)
	ReplyFeedback(ctx context.Context, actor *domain.User, questionID primitive.ObjectID, feedback string) (*domain.Question, error)
}

// --- Service Implementation ---

type questionService struct {
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	access       AccessPolicy
}

// NewQuestionService creates a new instance of questionService.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	access AccessPolicy,
) QuestionService {
	return &questionService{
		questionRepo: questionRepo,
		userRepo:     userRepo,
		access:       access,
	}
}

// CreateQuestion lets a student ask a question in their own name.
func (s *questionService) CreateQuestion(ctx context.Context, actor *domain.User, input QuestionInput) (*domain.Question, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	question := &domain.Question{
		StudentID: actor.ID,
		Date:      input.Date,
		Title:     input.Title,
		Content:   input.Content,
	}
	id, err := s.questionRepo.Create(ctx, question)
	if err != nil {
		return nil, err
	}
	question.ID = id
	return question, nil
}

// UpdateQuestion lets a student edit their own question.
func (s *questionService) UpdateQuestion(ctx context.Context, actor *domain.User, questionID primitive.ObjectID, input QuestionInput) (*domain.Question, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if question.StudentID != actor.ID {
		return nil, ErrForbidden
	}

	question.Date = input.Date
	question.Title = input.Title
	question.Content = input.Content
	if err := s.questionRepo.Update(ctx, question); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

// ListForStudent returns the student's questions split into pending and
// replied, gated by the visibility predicate.
func (s *questionService) ListForStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) (*QuestionList, error) {
	if err := s.access.RequireStudentAccess(ctx, actor, studentID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	list := &QuestionList{Pending: []QuestionView{}, Replied: []QuestionView{}}
	teacherNames := map[primitive.ObjectID]string{}
	for i := range questions {
		view := QuestionView{Question: questions[i]}
		if questions[i].TeacherID != nil {
			name, ok := teacherNames[*questions[i].TeacherID]
			if !ok {
				if teacher, err := s.userRepo.GetByID(ctx, *questions[i].TeacherID); err == nil {
					name = teacher.Name
				} else if !errors.Is(err, repository.ErrNotFound) {
					return nil, err
				}
				teacherNames[*questions[i].TeacherID] = name
			}
			view.TeacherName = name
		}
		if hasFeedback(questions[i].Feedback) {
			list.Replied = append(list.Replied, view)
		} else {
			list.Pending = append(list.Pending, view)
		}
	}
	return list, nil
}

// ReplyFeedback records a teacher's answer. Only teachers reply, and only
// for students assigned to them.
func (s *questionService) ReplyFeedback(ctx context.Context, actor *domain.User, questionID primitive.ObjectID, feedback string) (*domain.Question, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.IsTeacher() {
		return nil, ErrForbidden
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if err := s.access.RequireStudentAccess(ctx, actor, question.StudentID); err != nil {
		return nil, err
	}

	question.Feedback = &feedback
	teacherID := actor.ID
	question.TeacherID = &teacherID
	if err := s.questionRepo.Update(ctx, question); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}
