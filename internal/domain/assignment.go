package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentAssignment links a student to their responsible teacher.
// At most one row exists per student; every cross-actor visibility
// decision for teachers resolves through this relation.
type StudentAssignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	TeacherID primitive.ObjectID `bson:"teacherId" json:"teacherId"`
}
