package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"minami/training-system/internal/domain"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func seedUser(repo *memUserRepo, role domain.Role, email string) *domain.User {
	user := &domain.User{
		Name:  string(role) + " user",
		Email: email,
		Role:  role,
		Flag:  domain.FlagActive,
	}
	if role == domain.RoleStudent {
		user.TrainingStatus = domain.TrainingStatusInProgress
	}
	_, _ = repo.Create(context.Background(), user)
	return user
}

func assignStudent(repo *memAssignmentRepo, studentID, teacherID primitive.ObjectID) {
	_, _ = repo.Create(context.Background(), &domain.StudentAssignment{
		StudentID: studentID,
		TeacherID: teacherID,
	})
}
