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

const trainingPlanCollectionName = "student_training_plans"

// mongoTrainingPlanRepository implements repository.StudentTrainingPlanRepository.
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new StudentTrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.StudentTrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new per-student plan instantiation. The unique
// (studentId, planId) index turns a concurrent duplicate assignment into
// ErrConflict; the service's pre-check is advisory only.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.StudentTrainingPlan) (primitive.ObjectID, error) {
	if plan.StudentID == primitive.NilObjectID || plan.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("training plan requires studentId and planId")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.AssignedAt.IsZero() {
		plan.AssignedAt = now
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted training plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentTrainingPlan, error) {
	var plan domain.StudentTrainingPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByStudentID retrieves all training plans of one student, oldest first.
func (r *mongoTrainingPlanRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.StudentTrainingPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "assignedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.StudentTrainingPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.StudentTrainingPlan{}
	}
	return plans, nil
}

// GetByStudentAndPlanID retrieves the instantiation of one template for one
// student, if any.
func (r *mongoTrainingPlanRepository) GetByStudentAndPlanID(ctx context.Context, studentID, planID primitive.ObjectID) (*domain.StudentTrainingPlan, error) {
	var plan domain.StudentTrainingPlan
	filter := bson.M{"studentId": studentID, "planId": planID}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Delete removes a training plan. Its tasks are removed by the service
// inside the same transaction.
func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One instantiation per (student, template) pair
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
