package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
)

const testJWTSecret = "test-secret-key"

func newAuthFixture() (AuthService, *memUserRepo, *memAssignmentRepo) {
	userRepo := newMemUserRepo()
	assignmentRepo := newMemAssignmentRepo()
	svc := NewAuthService(userRepo, assignmentRepo, noopTxnManager{}, testJWTSecret, time.Hour)
	return svc, userRepo, assignmentRepo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("student registration creates the assignment row", func(t *testing.T) {
		svc, userRepo, assignmentRepo := newAuthFixture()
		teacher := seedUser(userRepo, domain.RoleTeacher, "teacher@example.com")

		user, err := svc.Register(ctx, RegisterInput{
			EmployeeID: "E-1001",
			Name:       "New Hire",
			Email:      "hire@example.com",
			Password:   "supersecret",
			Role:       domain.RoleStudent,
			TeacherID:  teacher.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TrainingStatusInProgress, user.TrainingStatus)
		assert.Empty(t, user.PasswordHash)

		assignment, err := assignmentRepo.GetByStudentID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, teacher.ID, assignment.TeacherID)
	})

	t.Run("student registration requires a teacher", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, err := svc.Register(ctx, RegisterInput{
			EmployeeID: "E-1002",
			Name:       "Orphan",
			Email:      "orphan@example.com",
			Password:   "supersecret",
			Role:       domain.RoleStudent,
			TeacherID:  primitive.NewObjectID(),
		})
		assert.ErrorIs(t, err, ErrTeacherNotFound)
	})

	t.Run("teacher id must be a teacher account", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		notTeacher := seedUser(userRepo, domain.RoleStudent, "peer@example.com")
		_, err := svc.Register(ctx, RegisterInput{
			EmployeeID: "E-1003",
			Name:       "Hire",
			Email:      "hire2@example.com",
			Password:   "supersecret",
			Role:       domain.RoleStudent,
			TeacherID:  notTeacher.ID,
		})
		assert.ErrorIs(t, err, ErrUserNotTeacher)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, userRepo, _ := newAuthFixture()
		seedUser(userRepo, domain.RoleTeacher, "dup@example.com")
		_, err := svc.Register(ctx, RegisterInput{
			EmployeeID: "E-1004",
			Name:       "Dup",
			Email:      "dup@example.com",
			Password:   "supersecret",
			Role:       domain.RoleTeacher,
		})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("teacher registration needs no assignment", func(t *testing.T) {
		svc, _, assignmentRepo := newAuthFixture()
		user, err := svc.Register(ctx, RegisterInput{
			EmployeeID: "E-1005",
			Name:       "Mentor",
			Email:      "mentor@example.com",
			Password:   "supersecret",
			Role:       domain.RoleTeacher,
		})
		require.NoError(t, err)
		assert.Empty(t, user.TrainingStatus)
		_, err = assignmentRepo.GetByStudentID(ctx, user.ID)
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _ := newAuthFixture()

	registered, err := svc.Register(ctx, RegisterInput{
		EmployeeID: "E-2001",
		Name:       "Mentor",
		Email:      "mentor@example.com",
		Password:   "supersecret",
		Role:       domain.RoleTeacher,
	})
	require.NoError(t, err)

	t.Run("valid credentials issue a token with uid and role", func(t *testing.T) {
		token, user, err := svc.Login(ctx, "mentor@example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.Empty(t, user.PasswordHash)

		claims := &jwtClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(testJWTSecret), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, registered.ID.Hex(), claims.UserID)
		assert.Equal(t, domain.RoleTeacher, claims.Role)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "mentor@example.com", "wrong")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "supersecret")
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("disabled account refused even with correct password", func(t *testing.T) {
		stored, err := userRepo.GetByID(ctx, registered.ID)
		require.NoError(t, err)
		stored.Flag = domain.FlagDisabled
		require.NoError(t, userRepo.Update(ctx, stored))

		_, _, err = svc.Login(ctx, "mentor@example.com", "supersecret")
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}
