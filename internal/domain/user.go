package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// AccountFlag marks whether an account may log in.
type AccountFlag int

const (
	FlagActive   AccountFlag = 0
	FlagDisabled AccountFlag = 9
)

// Training status labels for students. These are fixed labels the stats
// queries count on, not free text.
const (
	TrainingStatusInProgress = "in training"
	TrainingStatusCompleted  = "training completed"
)

// User represents an actor in the system (admin, teacher or student).
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID     string             `bson:"employeeId" json:"employeeId"` // Company-issued identifier shown on account screens
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash   string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role           Role               `bson:"role" json:"role"`
	Flag           AccountFlag        `bson:"flag" json:"flag"`
	TrainingStatus string             `bson:"trainingStatus,omitempty" json:"trainingStatus,omitempty"` // Students only
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsStaff reports whether the user may manage other students' data.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleTeacher
}
