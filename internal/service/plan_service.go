package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrTodoNotFound    = errors.New("todo not found")
)

// --- Input DTOs ---

type PlanInput struct {
	Name         string
	ExpectedDays *float64
	Description  string
}

type SectionInput struct {
	PlanID       primitive.ObjectID
	Name         string
	ExpectedDays *float64
	SortOrder    *int
}

type TopicInput struct {
	SectionID primitive.ObjectID
	Name      string
	SortOrder *int
}

type TodoInput struct {
	TopicID   primitive.ObjectID
	Name      string
	DayIndex  *int
	SortOrder *int
}

// --- Tree response types ---

// PlanTemplateTree is a fully materialized template: sections ordered by
// sortOrder, topics by sortOrder, todos by (dayIndex, sortOrder), nulls
// last at every level.
type PlanTemplateTree struct {
	domain.Plan
	Sections []PlanSectionTree `json:"sections"`
}

type PlanSectionTree struct {
	domain.PlanSection
	Topics []PlanTopicTree `json:"topics"`
}

type PlanTopicTree struct {
	domain.PlanTopic
	Todos []domain.PlanTodo `json:"todos"`
}

// --- Service Interface ---

// PlanTemplateService manages the four-level plan template hierarchy.
// Template authoring is staff-only; handlers enforce the role gate.
type PlanTemplateService interface {
	ListTemplates(ctx context.Context) ([]PlanTemplateTree, error)
	GetTemplate(ctx context.Context, planID primitive.ObjectID) (*PlanTemplateTree, error)

	CreatePlan(ctx context.Context, input PlanInput) (*domain.Plan, error)
	UpdatePlan(ctx context.Context, planID primitive.ObjectID, input PlanInput) (*domain.Plan, error)
	DeletePlan(ctx context.Context, planID primitive.ObjectID) error

	AddSection(ctx context.Context, input SectionInput) (*domain.PlanSection, error)
	UpdateSection(ctx context.Context, sectionID primitive.ObjectID, input SectionInput) (*domain.PlanSection, error)
	DeleteSection(ctx context.Context, sectionID primitive.ObjectID) error

	AddTopic(ctx context.Context, input TopicInput) (*domain.PlanTopic, error)
	UpdateTopic(ctx context.Context, topicID primitive.ObjectID, input TopicInput) (*domain.PlanTopic, error)
	DeleteTopic(ctx context.Context, topicID primitive.ObjectID) error

	AddTodo(ctx context.Context, input TodoInput) (*domain.PlanTodo, error)
	UpdateTodo(ctx context.Context, todoID primitive.ObjectID, input TodoInput) (*domain.PlanTodo, error)
	DeleteTodo(ctx context.Context, todoID primitive.ObjectID) error
}

// --- Service Implementation ---

type planTemplateService struct {
	planRepo    repository.PlanRepository
	sectionRepo repository.PlanSectionRepository
	topicRepo   repository.PlanTopicRepository
	todoRepo    repository.PlanTodoRepository
	txnManager  repository.TransactionManager
}

// NewPlanTemplateService creates a new instance of planTemplateService.
func NewPlanTemplateService(
	planRepo repository.PlanRepository,
	sectionRepo repository.PlanSectionRepository,
	topicRepo repository.PlanTopicRepository,
	todoRepo repository.PlanTodoRepository,
	txnManager repository.TransactionManager,
) PlanTemplateService {
	return &planTemplateService{
		planRepo:    planRepo,
		sectionRepo: sectionRepo,
		topicRepo:   topicRepo,
		todoRepo:    todoRepo,
		txnManager:  txnManager,
	}
}

// === Plans ===

func (s *planTemplateService) ListTemplates(ctx context.Context) ([]PlanTemplateTree, error) {
	plans, err := s.planRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	trees := make([]PlanTemplateTree, 0, len(plans))
	for i := range plans {
		tree, err := s.buildTree(ctx, plans[i])
		if err != nil {
			return nil, err
		}
		trees = append(trees, *tree)
	}
	return trees, nil
}

func (s *planTemplateService) GetTemplate(ctx context.Context, planID primitive.ObjectID) (*PlanTemplateTree, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return s.buildTree(ctx, *plan)
}

func (s *planTemplateService) buildTree(ctx context.Context, plan domain.Plan) (*PlanTemplateTree, error) {
	sections, err := s.sectionRepo.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	domain.SortSections(sections)

	sectionTrees := make([]PlanSectionTree, 0, len(sections))
	for _, section := range sections {
		topics, err := s.topicRepo.GetBySectionID(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		domain.SortTopics(topics)

		topicTrees := make([]PlanTopicTree, 0, len(topics))
		for _, topic := range topics {
			todos, err := s.todoRepo.GetByTopicID(ctx, topic.ID)
			if err != nil {
				return nil, err
			}
			domain.SortTodos(todos)
			topicTrees = append(topicTrees, PlanTopicTree{PlanTopic: topic, Todos: todos})
		}
		sectionTrees = append(sectionTrees, PlanSectionTree{PlanSection: section, Topics: topicTrees})
	}

	return &PlanTemplateTree{Plan: plan, Sections: sectionTrees}, nil
}

func (s *planTemplateService) CreatePlan(ctx context.Context, input PlanInput) (*domain.Plan, error) {
	plan := &domain.Plan{
		Name:         input.Name,
		ExpectedDays: input.ExpectedDays,
		Description:  input.Description,
	}
	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

func (s *planTemplateService) UpdatePlan(ctx context.Context, planID primitive.ObjectID, input PlanInput) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	plan.Name = input.Name
	plan.ExpectedDays = input.ExpectedDays
	plan.Description = input.Description
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan removes the plan and its whole subtree in one transaction.
// Already-materialized student tasks are left alone.
func (s *planTemplateService) DeletePlan(ctx context.Context, planID primitive.ObjectID) error {
	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	return s.txnManager.WithinTransaction(ctx, func(ctx context.Context) error {
		sections, err := s.sectionRepo.GetByPlanID(ctx, planID)
		if err != nil {
			return err
		}
		if err := s.deleteSectionSubtrees(ctx, sectionIDs(sections)); err != nil {
			return err
		}
		if err := s.sectionRepo.DeleteByPlanID(ctx, planID); err != nil {
			return err
		}
		return s.planRepo.Delete(ctx, planID)
	})
}

// === Sections ===

func (s *planTemplateService) AddSection(ctx context.Context, input SectionInput) (*domain.PlanSection, error) {
	if _, err := s.planRepo.GetByID(ctx, input.PlanID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	section := &domain.PlanSection{
		PlanID:       input.PlanID,
		Name:         input.Name,
		ExpectedDays: input.ExpectedDays,
		SortOrder:    input.SortOrder,
	}
	id, err := s.sectionRepo.Create(ctx, section)
	if err != nil {
		return nil, err
	}
	section.ID = id
	return section, nil
}

func (s *planTemplateService) UpdateSection(ctx context.Context, sectionID primitive.ObjectID, input SectionInput) (*domain.PlanSection, error) {
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	// Re-parent before applying field updates when the plan id changed.
	if input.PlanID != primitive.NilObjectID && input.PlanID != section.PlanID {
		if _, err := s.planRepo.GetByID(ctx, input.PlanID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, err
		}
		section.PlanID = input.PlanID
	}

	section.Name = input.Name
	section.ExpectedDays = input.ExpectedDays
	section.SortOrder = input.SortOrder
	if err := s.sectionRepo.Update(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *planTemplateService) DeleteSection(ctx context.Context, sectionID primitive.ObjectID) error {
	if _, err := s.sectionRepo.GetByID(ctx, sectionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSectionNotFound
		}
		return err
	}

	return s.txnManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.deleteSectionSubtrees(ctx, []primitive.ObjectID{sectionID}); err != nil {
			return err
		}
		return s.sectionRepo.Delete(ctx, sectionID)
	})
}

// deleteSectionSubtrees removes topics and todos under the given sections.
func (s *planTemplateService) deleteSectionSubtrees(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	topics, err := s.topicRepo.GetBySectionIDs(ctx, ids)
	if err != nil {
		return err
	}
	if err := s.todoRepo.DeleteByTopicIDs(ctx, topicIDs(topics)); err != nil {
		return err
	}
	return s.topicRepo.DeleteBySectionIDs(ctx, ids)
}

// === Topics ===

func (s *planTemplateService) AddTopic(ctx context.Context, input TopicInput) (*domain.PlanTopic, error) {
	if _, err := s.sectionRepo.GetByID(ctx, input.SectionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	topic := &domain.PlanTopic{
		SectionID: input.SectionID,
		Name:      input.Name,
		SortOrder: input.SortOrder,
	}
	id, err := s.topicRepo.Create(ctx, topic)
	if err != nil {
		return nil, err
	}
	topic.ID = id
	return topic, nil
}

func (s *planTemplateService) UpdateTopic(ctx context.Context, topicID primitive.ObjectID, input TopicInput) (*domain.PlanTopic, error) {
	topic, err := s.topicRepo.GetByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	if input.SectionID != primitive.NilObjectID && input.SectionID != topic.SectionID {
		if _, err := s.sectionRepo.GetByID(ctx, input.SectionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrSectionNotFound
			}
			return nil, err
		}
		topic.SectionID = input.SectionID
	}

	topic.Name = input.Name
	topic.SortOrder = input.SortOrder
	if err := s.topicRepo.Update(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *planTemplateService) DeleteTopic(ctx context.Context, topicID primitive.ObjectID) error {
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTopicNotFound
		}
		return err
	}

	return s.txnManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.todoRepo.DeleteByTopicIDs(ctx, []primitive.ObjectID{topicID}); err != nil {
			return err
		}
		return s.topicRepo.Delete(ctx, topicID)
	})
}

// === Todos ===

func (s *planTemplateService) AddTodo(ctx context.Context, input TodoInput) (*domain.PlanTodo, error) {
	if _, err := s.topicRepo.GetByID(ctx, input.TopicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	todo := &domain.PlanTodo{
		TopicID:   input.TopicID,
		Name:      input.Name,
		DayIndex:  input.DayIndex,
		SortOrder: input.SortOrder,
	}
	id, err := s.todoRepo.Create(ctx, todo)
	if err != nil {
		return nil, err
	}
	todo.ID = id
	return todo, nil
}

func (s *planTemplateService) UpdateTodo(ctx context.Context, todoID primitive.ObjectID, input TodoInput) (*domain.PlanTodo, error) {
	todo, err := s.todoRepo.GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}

	if input.TopicID != primitive.NilObjectID && input.TopicID != todo.TopicID {
		if _, err := s.topicRepo.GetByID(ctx, input.TopicID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTopicNotFound
			}
			return nil, err
		}
		todo.TopicID = input.TopicID
	}

	todo.Name = input.Name
	todo.DayIndex = input.DayIndex
	todo.SortOrder = input.SortOrder
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *planTemplateService) DeleteTodo(ctx context.Context, todoID primitive.ObjectID) error {
	err := s.todoRepo.Delete(ctx, todoID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}

// --- helpers ---

func sectionIDs(sections []domain.PlanSection) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	return ids
}

func topicIDs(topics []domain.PlanTopic) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
	}
	return ids
}
