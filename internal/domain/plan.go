package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is a reusable training-plan template. It is authored independently of
// any student; assigning it to a student materializes a separate task list.
type Plan struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	ExpectedDays *float64           `bson:"expectedDays,omitempty" json:"expectedDays,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanSection is the first grouping level under a plan.
type PlanSection struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID       primitive.ObjectID `bson:"planId" json:"planId"`
	Name         string             `bson:"name" json:"name"`
	ExpectedDays *float64           `bson:"expectedDays,omitempty" json:"expectedDays,omitempty"`
	SortOrder    *int               `bson:"sortOrder,omitempty" json:"sortOrder,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanTopic is the second grouping level, under a section.
type PlanTopic struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SectionID primitive.ObjectID `bson:"sectionId" json:"sectionId"`
	Name      string             `bson:"name" json:"name"`
	SortOrder *int               `bson:"sortOrder,omitempty" json:"sortOrder,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanTodo is the leaf unit of prescribed work. DayIndex is the intended
// day-in-program; SortOrder breaks ties within the same day.
type PlanTodo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TopicID   primitive.ObjectID `bson:"topicId" json:"topicId"`
	Name      string             `bson:"name" json:"name"`
	DayIndex  *int               `bson:"dayIndex,omitempty" json:"dayIndex,omitempty"`
	SortOrder *int               `bson:"sortOrder,omitempty" json:"sortOrder,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
