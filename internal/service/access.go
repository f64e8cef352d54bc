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
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrForbidden       = errors.New("access denied")
)

// AccessPolicy is the single authorization rule for crossing an
// actor↔student boundary. Every feature that reads or writes a student's
// records (training plans, tasks, reports, questions, account details)
// must go through it instead of re-implementing role checks.
type AccessPolicy interface {
	// CanAccessStudent reports whether actor may see or mutate the records
	// of the student with the given id:
	//   admin   → always
	//   student → only their own
	//   teacher → only students linked to them by a StudentAssignment row
	CanAccessStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) (bool, error)

	// RequireStudentAccess is CanAccessStudent folded into an error:
	// ErrForbidden on false, nil on true.
	RequireStudentAccess(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) error
}

type accessPolicy struct {
	assignmentRepo repository.StudentAssignmentRepository
}

// NewAccessPolicy creates the shared visibility predicate.
func NewAccessPolicy(assignmentRepo repository.StudentAssignmentRepository) AccessPolicy {
	return &accessPolicy{assignmentRepo: assignmentRepo}
}

func (p *accessPolicy) CanAccessStudent(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) (bool, error) {
	if actor == nil {
		return false, ErrUnauthenticated
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return true, nil
	case domain.RoleStudent:
		return actor.ID == studentID, nil
	case domain.RoleTeacher:
		assignment, err := p.assignmentRepo.GetByStudentID(ctx, studentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return assignment.TeacherID == actor.ID, nil
	}
	return false, nil
}

func (p *accessPolicy) RequireStudentAccess(ctx context.Context, actor *domain.User, studentID primitive.ObjectID) error {
	ok, err := p.CanAccessStudent(ctx, actor, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// requireStaff rejects actors that are neither admin nor teacher.
func requireStaff(actor *domain.User) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !actor.IsStaff() {
		return ErrForbidden
	}
	return nil
}
