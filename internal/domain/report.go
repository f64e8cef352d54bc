package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report flag values: 0 marks a draft the student is still editing,
// 1 a submitted report visible to their teacher.
const (
	ReportFlagDraft     = 0
	ReportFlagSubmitted = 1
)

// DailyReport is a student-authored report a teacher replies to
// asynchronously. Feedback stays nil until a teacher replies; the stats
// queries count nil-feedback rows as "unreplied".
type DailyReport struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID  `bson:"studentId" json:"studentId"`
	Date      time.Time           `bson:"date" json:"date"`
	Title     string              `bson:"title" json:"title"`
	Memo      string              `bson:"memo,omitempty" json:"memo,omitempty"`
	Flag      int                 `bson:"flag" json:"flag"`
	Feedback  *string             `bson:"feedback,omitempty" json:"feedback,omitempty"`
	TeacherID *primitive.ObjectID `bson:"teacherId,omitempty" json:"teacherId,omitempty"` // Who replied
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ReportAttachment stores metadata about a file a student attached to a
// daily report. The file itself lives in S3 under S3ObjectKey.
type ReportAttachment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReportID    primitive.ObjectID `bson:"reportId" json:"reportId"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"studentId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // Internal use only
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
