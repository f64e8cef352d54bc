package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is a student-authored question, answered asynchronously by a
// teacher the same way daily reports are.
type Question struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID  `bson:"studentId" json:"studentId"`
	Date      time.Time           `bson:"date" json:"date"`
	Title     string              `bson:"title" json:"title"`
	Content   string              `bson:"content,omitempty" json:"content,omitempty"`
	Feedback  *string             `bson:"feedback,omitempty" json:"feedback,omitempty"`
	TeacherID *primitive.ObjectID `bson:"teacherId,omitempty" json:"teacherId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
