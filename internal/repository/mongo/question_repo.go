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

const questionCollectionName = "questions"

// mongoQuestionRepository implements repository.QuestionRepository.
type mongoQuestionRepository struct {
	collection *mongo.Collection
}

// NewMongoQuestionRepository creates a new Question repository.
func NewMongoQuestionRepository(db *mongo.Database) repository.QuestionRepository {
	return &mongoQuestionRepository{
		collection: db.Collection(questionCollectionName),
	}
}

// Create inserts a new question.
func (r *mongoQuestionRepository) Create(ctx context.Context, question *domain.Question) (primitive.ObjectID, error) {
	if question.StudentID == primitive.NilObjectID || question.Title == "" {
		return primitive.NilObjectID, errors.New("question requires studentId and title")
	}
	question.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	question.CreatedAt = now
	question.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, question)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted question ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single question by its ID.
func (r *mongoQuestionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Question, error) {
	var question domain.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByStudentID retrieves all questions of one student, newest date first.
func (r *mongoQuestionRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Question, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []domain.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return questions, nil
}

// Update persists the question's mutable fields, including teacher feedback.
func (r *mongoQuestionRepository) Update(ctx context.Context, question *domain.Question) error {
	if question.ID == primitive.NilObjectID {
		return errors.New("question ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"date":      question.Date,
			"title":     question.Title,
			"content":   question.Content,
			"feedback":  question.Feedback,
			"teacherId": question.TeacherID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": question.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountPendingFeedback counts unanswered questions for the given students.
func (r *mongoQuestionRepository) CountPendingFeedback(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"studentId": bson.M{"$in": studentIDs},
		"$or":       pendingFeedbackFilter["$or"],
	}
	return r.collection.CountDocuments(ctx, filter)
}

// CountAllPendingFeedback counts unanswered questions across all students.
func (r *mongoQuestionRepository) CountAllPendingFeedback(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, pendingFeedbackFilter)
}

// EnsureQuestionIndexes creates necessary indexes. Call during startup.
func EnsureQuestionIndexes(ctx context.Context, collection *mongo.Collection) {
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
