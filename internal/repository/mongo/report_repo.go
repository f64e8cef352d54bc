package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

const reportCollectionName = "daily_reports"

// pendingFeedbackFilter matches rows no teacher has replied to yet.
// Feedback is either absent or explicitly null.
var pendingFeedbackFilter = bson.M{"$or": bson.A{
	bson.M{"feedback": bson.M{"$exists": false}},
	bson.M{"feedback": nil},
}}

// mongoDailyReportRepository implements repository.DailyReportRepository.
type mongoDailyReportRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyReportRepository creates a new DailyReport repository.
func NewMongoDailyReportRepository(db *mongo.Database) repository.DailyReportRepository {
	return &mongoDailyReportRepository{
		collection: db.Collection(reportCollectionName),
	}
}

// Create inserts a new daily report.
func (r *mongoDailyReportRepository) Create(ctx context.Context, report *domain.DailyReport) (primitive.ObjectID, error) {
	if report.StudentID == primitive.NilObjectID || report.Title == "" {
		return primitive.NilObjectID, errors.New("report requires studentId and title")
	}
	report.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted report ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single report by its ID.
func (r *mongoDailyReportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DailyReport, error) {
	var report domain.DailyReport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetByStudentID retrieves all reports of one student, newest date first.
func (r *mongoDailyReportRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.DailyReport, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []domain.DailyReport
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []domain.DailyReport{}
	}
	return reports, nil
}

// Update persists the report's mutable fields, including teacher feedback.
func (r *mongoDailyReportRepository) Update(ctx context.Context, report *domain.DailyReport) error {
	if report.ID == primitive.NilObjectID {
		return errors.New("report ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"date":      report.Date,
			"title":     report.Title,
			"memo":      report.Memo,
			"flag":      report.Flag,
			"feedback":  report.Feedback,
			"teacherId": report.TeacherID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": report.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountPendingFeedback counts unreplied reports for the given students.
func (r *mongoDailyReportRepository) CountPendingFeedback(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"studentId": bson.M{"$in": studentIDs},
		"$or":       pendingFeedbackFilter["$or"],
	}
	return r.collection.CountDocuments(ctx, filter)
}

// CountAllPendingFeedback counts unreplied reports across all students.
func (r *mongoDailyReportRepository) CountAllPendingFeedback(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, pendingFeedbackFilter)
}

// EnsureDailyReportIndexes creates necessary indexes. Call during startup.
func EnsureDailyReportIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "feedback", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
