package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task and plan status labels. Statuses are free text from the tracker's
// point of view; these are the initial/terminal values the rest of the
// system recognizes.
const (
	TaskStatusNotStarted = "not started"
	TaskStatusInProgress = "in progress"
	TaskStatusCompleted  = "completed"
)

// StudentTrainingPlan is one student's instantiation of a Plan template.
// It references the template by id; it is not a copy of it.
type StudentTrainingPlan struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID  primitive.ObjectID `bson:"studentId" json:"studentId"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	Status     string             `bson:"status" json:"status"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
	AssignedBy primitive.ObjectID `bson:"assignedBy" json:"assignedBy"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StudentTrainingTask is the mutable per-student copy of one template todo,
// created once at assignment time and never re-synced with template edits.
type StudentTrainingTask struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentTrainingPlanID primitive.ObjectID `bson:"studentTrainingPlanId" json:"studentTrainingPlanId"`
	TodoID                primitive.ObjectID `bson:"todoId" json:"todoId"`
	Status                string             `bson:"status" json:"status"`
	ProgressNote          string             `bson:"progressNote,omitempty" json:"progressNote,omitempty"`
	StartedAt             *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt           *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}
