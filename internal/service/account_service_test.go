package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
)

type accountFixture struct {
	svc              AccountService
	userRepo         *memUserRepo
	assignmentRepo   *memAssignmentRepo
	trainingPlanRepo *memTrainingPlanRepo
	trainingTaskRepo *memTrainingTaskRepo
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		userRepo:         newMemUserRepo(),
		assignmentRepo:   newMemAssignmentRepo(),
		trainingPlanRepo: newMemTrainingPlanRepo(),
		trainingTaskRepo: newMemTrainingTaskRepo(),
	}
	f.svc = NewAccountService(f.userRepo, f.assignmentRepo, f.trainingPlanRepo, f.trainingTaskRepo, NewAccessPolicy(f.assignmentRepo))
	return f
}

// seedPlanWithTasks creates one training plan for the student with the given
// completed/total task counts.
func (f *accountFixture) seedPlanWithTasks(ctx context.Context, studentID primitive.ObjectID, completed, total int) {
	plan := &domain.StudentTrainingPlan{StudentID: studentID, PlanID: primitive.NewObjectID()}
	plan.ID, _ = f.trainingPlanRepo.Create(ctx, plan)

	tasks := make([]domain.StudentTrainingTask, 0, total)
	for i := 0; i < total; i++ {
		status := domain.TaskStatusNotStarted
		if i < completed {
			status = domain.TaskStatusCompleted
		}
		tasks = append(tasks, domain.StudentTrainingTask{
			StudentTrainingPlanID: plan.ID,
			TodoID:                primitive.NewObjectID(),
			Status:                status,
		})
	}
	_ = f.trainingTaskRepo.CreateMany(ctx, tasks)
}

func TestComputeProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		plans [][2]int // completed, total per plan
		want  int
	}{
		{"no plans", nil, 0},
		{"single quarter done", [][2]int{{1, 4}}, 25},
		{"quarter and full averages to 62", [][2]int{{1, 4}, {3, 3}}, 62},
		{"truncation inside each plan", [][2]int{{1, 3}}, 33},
		{"zero-task plan still counts", [][2]int{{0, 0}, {3, 3}}, 50},
		{"all complete", [][2]int{{2, 2}, {5, 5}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccountFixture()
			teacher := seedUser(f.userRepo, domain.RoleTeacher, "teacher@example.com")
			student := seedUser(f.userRepo, domain.RoleStudent, "student@example.com")
			assignStudent(f.assignmentRepo, student.ID, teacher.ID)
			for _, p := range tt.plans {
				f.seedPlanWithTasks(ctx, student.ID, p[0], p[1])
			}

			view, err := f.svc.GetAccount(ctx, teacher, student.ID)
			require.NoError(t, err)
			require.NotNil(t, view.Progress)
			assert.Equal(t, tt.want, *view.Progress)
		})
	}
}

func TestGetAccount(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	admin := seedUser(f.userRepo, domain.RoleAdmin, "admin@example.com")
	teacher := seedUser(f.userRepo, domain.RoleTeacher, "teacher@example.com")
	other := seedUser(f.userRepo, domain.RoleTeacher, "other@example.com")
	student := seedUser(f.userRepo, domain.RoleStudent, "student@example.com")
	assignStudent(f.assignmentRepo, student.ID, teacher.ID)

	t.Run("student row carries teacher identity", func(t *testing.T) {
		view, err := f.svc.GetAccount(ctx, admin, student.ID)
		require.NoError(t, err)
		require.NotNil(t, view.TeacherID)
		assert.Equal(t, teacher.ID, *view.TeacherID)
		assert.Equal(t, teacher.Name, view.TeacherName)
	})

	t.Run("unassigned teacher refused", func(t *testing.T) {
		_, err := f.svc.GetAccount(ctx, other, student.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("student reads themselves", func(t *testing.T) {
		view, err := f.svc.GetAccount(ctx, student, student.ID)
		require.NoError(t, err)
		assert.Equal(t, student.ID, view.ID)
	})

	t.Run("staff rows have no progress", func(t *testing.T) {
		view, err := f.svc.GetAccount(ctx, admin, teacher.ID)
		require.NoError(t, err)
		assert.Nil(t, view.Progress)
		assert.Nil(t, view.TeacherID)
	})

	t.Run("teacher cannot read another staff account", func(t *testing.T) {
		_, err := f.svc.GetAccount(ctx, teacher, other.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing account", func(t *testing.T) {
		ghost := seedUser(f.userRepo, domain.RoleStudent, "ghost@example.com")
		delete(f.userRepo.users, ghost.ID)
		_, err := f.svc.GetAccount(ctx, admin, ghost.ID)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestBuildSummary(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	admin := seedUser(f.userRepo, domain.RoleAdmin, "admin@example.com")
	teacher := seedUser(f.userRepo, domain.RoleTeacher, "teacher@example.com")
	active := seedUser(f.userRepo, domain.RoleStudent, "active@example.com")
	disabled := seedUser(f.userRepo, domain.RoleStudent, "disabled@example.com")
	seedUser(f.userRepo, domain.RoleStudent, "unassigned@example.com")

	disabled.Flag = domain.FlagDisabled
	require.NoError(t, f.userRepo.Update(ctx, disabled))

	assignStudent(f.assignmentRepo, active.ID, teacher.ID)
	assignStudent(f.assignmentRepo, disabled.ID, teacher.ID)

	t.Run("admin counts the whole population", func(t *testing.T) {
		summary, err := f.svc.BuildSummary(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.AdminCount)
		assert.Equal(t, int64(1), summary.TeacherCount)
		assert.Equal(t, int64(3), summary.StudentCount)
		assert.Equal(t, int64(4), summary.ActiveCount)
		assert.Equal(t, int64(1), summary.DisabledCount)
	})

	t.Run("teacher counts assigned students only", func(t *testing.T) {
		summary, err := f.svc.BuildSummary(ctx, teacher)
		require.NoError(t, err)
		assert.Equal(t, int64(2), summary.StudentCount)
		assert.Equal(t, int64(1), summary.ActiveCount)
		assert.Equal(t, int64(1), summary.DisabledCount)
		assert.Zero(t, summary.AdminCount)
		assert.Zero(t, summary.TeacherCount)
	})

	t.Run("student forbidden", func(t *testing.T) {
		_, err := f.svc.BuildSummary(ctx, active)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	admin := seedUser(f.userRepo, domain.RoleAdmin, "admin@example.com")
	teacher := seedUser(f.userRepo, domain.RoleTeacher, "teacher@example.com")
	mine := seedUser(f.userRepo, domain.RoleStudent, "mine@example.com")
	seedUser(f.userRepo, domain.RoleStudent, "foreign@example.com")
	assignStudent(f.assignmentRepo, mine.ID, teacher.ID)
	f.seedPlanWithTasks(ctx, mine.ID, 1, 4)

	t.Run("admin sees everyone with teacher identity on student rows", func(t *testing.T) {
		views, err := f.svc.ListAccounts(ctx, admin)
		require.NoError(t, err)
		require.Len(t, views, 4)

		var mineView *AccountView
		for i := range views {
			if views[i].ID == mine.ID {
				mineView = &views[i]
			}
		}
		require.NotNil(t, mineView)
		require.NotNil(t, mineView.TeacherID)
		assert.Equal(t, teacher.ID, *mineView.TeacherID)
		assert.Equal(t, teacher.Name, mineView.TeacherName)
	})

	t.Run("teacher sees assigned students with progress", func(t *testing.T) {
		views, err := f.svc.ListAccounts(ctx, teacher)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, mine.ID, views[0].ID)
		require.NotNil(t, views[0].Progress)
		assert.Equal(t, 25, *views[0].Progress)
		assert.Equal(t, teacher.Name, views[0].TeacherName)
	})
}

func TestListTeachers(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	teacherA := seedUser(f.userRepo, domain.RoleTeacher, "a.teacher@example.com")
	teacherB := seedUser(f.userRepo, domain.RoleTeacher, "b.teacher@example.com")
	student := seedUser(f.userRepo, domain.RoleStudent, "student@example.com")
	seedUser(f.userRepo, domain.RoleAdmin, "admin@example.com")

	t.Run("returns teacher accounts only", func(t *testing.T) {
		views, err := f.svc.ListTeachers(ctx, student)
		require.NoError(t, err)
		require.Len(t, views, 2)
		ids := map[string]bool{}
		for _, v := range views {
			assert.Equal(t, domain.RoleTeacher, v.Role)
			ids[v.ID.Hex()] = true
		}
		assert.True(t, ids[teacherA.ID.Hex()])
		assert.True(t, ids[teacherB.ID.Hex()])
	})

	t.Run("nil actor is unauthenticated", func(t *testing.T) {
		_, err := f.svc.ListTeachers(ctx, nil)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestUpdateTrainingStatus(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	admin := seedUser(f.userRepo, domain.RoleAdmin, "admin@example.com")
	teacher := seedUser(f.userRepo, domain.RoleTeacher, "teacher@example.com")
	other := seedUser(f.userRepo, domain.RoleTeacher, "other@example.com")
	student := seedUser(f.userRepo, domain.RoleStudent, "student@example.com")
	assignStudent(f.assignmentRepo, student.ID, teacher.ID)

	t.Run("assigned teacher marks the student done", func(t *testing.T) {
		view, err := f.svc.UpdateTrainingStatus(ctx, teacher, student.ID, domain.TrainingStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.TrainingStatusCompleted, view.TrainingStatus)

		stored, err := f.userRepo.GetByID(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TrainingStatusCompleted, stored.TrainingStatus)
	})

	t.Run("admin moves the student back into training", func(t *testing.T) {
		view, err := f.svc.UpdateTrainingStatus(ctx, admin, student.ID, domain.TrainingStatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, domain.TrainingStatusInProgress, view.TrainingStatus)
	})

	t.Run("unassigned teacher forbidden", func(t *testing.T) {
		_, err := f.svc.UpdateTrainingStatus(ctx, other, student.ID, domain.TrainingStatusCompleted)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("student actor forbidden", func(t *testing.T) {
		_, err := f.svc.UpdateTrainingStatus(ctx, student, student.ID, domain.TrainingStatusCompleted)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("target must be a student", func(t *testing.T) {
		_, err := f.svc.UpdateTrainingStatus(ctx, admin, other.ID, domain.TrainingStatusCompleted)
		assert.ErrorIs(t, err, ErrUserNotStudent)
	})

	t.Run("unknown label rejected", func(t *testing.T) {
		_, err := f.svc.UpdateTrainingStatus(ctx, admin, student.ID, "done-ish")
		assert.ErrorIs(t, err, ErrInvalidTrainingStatus)
	})

	t.Run("missing account", func(t *testing.T) {
		ghost := seedUser(f.userRepo, domain.RoleStudent, "ghost@example.com")
		delete(f.userRepo.users, ghost.ID)
		_, err := f.svc.UpdateTrainingStatus(ctx, admin, ghost.ID, domain.TrainingStatusCompleted)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}
