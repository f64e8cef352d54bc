package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

type planFixture struct {
	svc         PlanTemplateService
	planRepo    *memPlanRepo
	sectionRepo *memSectionRepo
	topicRepo   *memTopicRepo
	todoRepo    *memTodoRepo
}

func newPlanFixture() *planFixture {
	f := &planFixture{
		planRepo:    newMemPlanRepo(),
		sectionRepo: newMemSectionRepo(),
		topicRepo:   newMemTopicRepo(),
		todoRepo:    newMemTodoRepo(),
	}
	f.svc = NewPlanTemplateService(f.planRepo, f.sectionRepo, f.topicRepo, f.todoRepo, noopTxnManager{})
	return f
}

func TestPlanTemplateTreeOrdering(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture()

	plan, err := f.svc.CreatePlan(ctx, PlanInput{Name: "Onboarding"})
	require.NoError(t, err)

	// Sections created out of order, one without a sortOrder.
	secLast, err := f.svc.AddSection(ctx, SectionInput{PlanID: plan.ID, Name: "unordered"})
	require.NoError(t, err)
	secB, err := f.svc.AddSection(ctx, SectionInput{PlanID: plan.ID, Name: "second", SortOrder: intPtr(2)})
	require.NoError(t, err)
	secA, err := f.svc.AddSection(ctx, SectionInput{PlanID: plan.ID, Name: "first", SortOrder: intPtr(1)})
	require.NoError(t, err)

	topic, err := f.svc.AddTopic(ctx, TopicInput{SectionID: secA.ID, Name: "basics", SortOrder: intPtr(1)})
	require.NoError(t, err)

	// Todos: dayIndex wins over sortOrder, missing keys sort last.
	_, err = f.svc.AddTodo(ctx, TodoInput{TopicID: topic.ID, Name: "no keys"})
	require.NoError(t, err)
	_, err = f.svc.AddTodo(ctx, TodoInput{TopicID: topic.ID, Name: "day2", DayIndex: intPtr(2), SortOrder: intPtr(1)})
	require.NoError(t, err)
	_, err = f.svc.AddTodo(ctx, TodoInput{TopicID: topic.ID, Name: "day1-b", DayIndex: intPtr(1), SortOrder: intPtr(2)})
	require.NoError(t, err)
	_, err = f.svc.AddTodo(ctx, TodoInput{TopicID: topic.ID, Name: "day1-a", DayIndex: intPtr(1), SortOrder: intPtr(1)})
	require.NoError(t, err)

	tree, err := f.svc.GetTemplate(ctx, plan.ID)
	require.NoError(t, err)

	require.Len(t, tree.Sections, 3)
	assert.Equal(t, secA.ID, tree.Sections[0].PlanSection.ID)
	assert.Equal(t, secB.ID, tree.Sections[1].PlanSection.ID)
	assert.Equal(t, secLast.ID, tree.Sections[2].PlanSection.ID, "nil sortOrder sorts last")

	todos := tree.Sections[0].Topics[0].Todos
	require.Len(t, todos, 4)
	names := []string{todos[0].Name, todos[1].Name, todos[2].Name, todos[3].Name}
	assert.Equal(t, []string{"day1-a", "day1-b", "day2", "no keys"}, names)
}

func TestPlanTemplateReparent(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture()

	planA, _ := f.svc.CreatePlan(ctx, PlanInput{Name: "A"})
	planB, _ := f.svc.CreatePlan(ctx, PlanInput{Name: "B"})
	section, err := f.svc.AddSection(ctx, SectionInput{PlanID: planA.ID, Name: "sec", SortOrder: intPtr(1)})
	require.NoError(t, err)

	t.Run("moves to the new parent when it exists", func(t *testing.T) {
		updated, err := f.svc.UpdateSection(ctx, section.ID, SectionInput{
			PlanID:    planB.ID,
			Name:      "sec",
			SortOrder: intPtr(1),
		})
		require.NoError(t, err)
		assert.Equal(t, planB.ID, updated.PlanID)
	})

	t.Run("missing new parent fails before field updates", func(t *testing.T) {
		ghost := domain.Plan{}
		ghost.ID, _ = f.planRepo.Create(ctx, &ghost)
		require.NoError(t, f.planRepo.Delete(ctx, ghost.ID))

		_, err := f.svc.UpdateSection(ctx, section.ID, SectionInput{
			PlanID: ghost.ID,
			Name:   "renamed",
		})
		assert.ErrorIs(t, err, ErrPlanNotFound)

		current, err := f.sectionRepo.GetByID(ctx, section.ID)
		require.NoError(t, err)
		assert.Equal(t, "sec", current.Name, "field update must not apply")
	})
}

func TestPlanTemplateCascadeDelete(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture()

	plan, _ := f.svc.CreatePlan(ctx, PlanInput{Name: "doomed"})
	section, _ := f.svc.AddSection(ctx, SectionInput{PlanID: plan.ID, Name: "s"})
	topic, _ := f.svc.AddTopic(ctx, TopicInput{SectionID: section.ID, Name: "t"})
	todo, _ := f.svc.AddTodo(ctx, TodoInput{TopicID: topic.ID, Name: "d"})

	require.NoError(t, f.svc.DeletePlan(ctx, plan.ID))

	_, err := f.planRepo.GetByID(ctx, plan.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.sectionRepo.GetByID(ctx, section.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.topicRepo.GetByID(ctx, topic.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.todoRepo.GetByID(ctx, todo.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlanTemplateDeleteMissing(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture()

	ghost := domain.Plan{}
	ghost.ID, _ = f.planRepo.Create(ctx, &ghost)
	require.NoError(t, f.planRepo.Delete(ctx, ghost.ID))

	assert.ErrorIs(t, f.svc.DeletePlan(ctx, ghost.ID), ErrPlanNotFound)
	assert.ErrorIs(t, f.svc.DeleteSection(ctx, ghost.ID), ErrSectionNotFound)
	assert.ErrorIs(t, f.svc.DeleteTopic(ctx, ghost.ID), ErrTopicNotFound)
	assert.ErrorIs(t, f.svc.DeleteTodo(ctx, ghost.ID), ErrTodoNotFound)
}
