package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"minami/training-system/internal/domain"
	"minami/training-system/internal/repository"
)

const assignmentCollectionName = "student_assignments"

// mongoAssignmentRepository implements repository.StudentAssignmentRepository.
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new StudentAssignment repository.
func NewMongoAssignmentRepository(db *mongo.Database) repository.StudentAssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new student↔teacher link. The unique index on studentId
// rejects a second link for the same student.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.StudentAssignment) (primitive.ObjectID, error) {
	if assignment.StudentID == primitive.NilObjectID || assignment.TeacherID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires studentId and teacherId")
	}
	assignment.ID = primitive.NewObjectID()

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// GetByStudentID retrieves the assignment row for one student.
func (r *mongoAssignmentRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) (*domain.StudentAssignment, error) {
	var assignment domain.StudentAssignment
	err := r.collection.FindOne(ctx, bson.M{"studentId": studentID}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByStudentIDs retrieves assignment rows for a set of students.
func (r *mongoAssignmentRepository) GetByStudentIDs(ctx context.Context, studentIDs []primitive.ObjectID) ([]domain.StudentAssignment, error) {
	if len(studentIDs) == 0 {
		return []domain.StudentAssignment{}, nil
	}
	return r.find(ctx, bson.M{"studentId": bson.M{"$in": studentIDs}})
}

// GetByTeacherID retrieves all assignment rows for one teacher.
func (r *mongoAssignmentRepository) GetByTeacherID(ctx context.Context, teacherID primitive.ObjectID) ([]domain.StudentAssignment, error) {
	return r.find(ctx, bson.M{"teacherId": teacherID})
}

func (r *mongoAssignmentRepository) find(ctx context.Context, filter bson.M) ([]domain.StudentAssignment, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.StudentAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []domain.StudentAssignment{}
	}
	return assignments, nil
}

// EnsureAssignmentIndexes creates necessary indexes. Call during startup.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One active teacher per student
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "teacherId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
