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

const trainingTaskCollectionName = "student_training_tasks"

// mongoTrainingTaskRepository implements repository.StudentTrainingTaskRepository.
type mongoTrainingTaskRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingTaskRepository creates a new StudentTrainingTask repository.
func NewMongoTrainingTaskRepository(db *mongo.Database) repository.StudentTrainingTaskRepository {
	return &mongoTrainingTaskRepository{
		collection: db.Collection(trainingTaskCollectionName),
	}
}

// CreateMany inserts the task set of one plan instantiation in a single
// batch. Caller runs this inside the assignment transaction.
func (r *mongoTrainingTaskRepository) CreateMany(ctx context.Context, tasks []domain.StudentTrainingTask) error {
	if len(tasks) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(tasks))
	for i := range tasks {
		if tasks[i].StudentTrainingPlanID == primitive.NilObjectID || tasks[i].TodoID == primitive.NilObjectID {
			return errors.New("task requires studentTrainingPlanId and todoId")
		}
		tasks[i].ID = primitive.NewObjectID()
		tasks[i].CreatedAt = now
		tasks[i].UpdatedAt = now
		docs = append(docs, tasks[i])
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// GetByID retrieves a single task by its ID.
func (r *mongoTrainingTaskRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentTrainingTask, error) {
	var task domain.StudentTrainingTask
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetByPlanID retrieves all tasks of one plan instantiation. Presentation
// order is recomputed by the service from the template hierarchy, not from
// the order rows come back in.
func (r *mongoTrainingTaskRepository) GetByPlanID(ctx context.Context, studentTrainingPlanID primitive.ObjectID) ([]domain.StudentTrainingTask, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"studentTrainingPlanId": studentTrainingPlanID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []domain.StudentTrainingTask
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.StudentTrainingTask{}
	}
	return tasks, nil
}

// Update writes the task's tracked fields verbatim.
func (r *mongoTrainingTaskRepository) Update(ctx context.Context, task *domain.StudentTrainingTask) error {
	if task.ID == primitive.NilObjectID {
		return errors.New("task ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"status":       task.Status,
			"progressNote": task.ProgressNote,
			"startedAt":    task.StartedAt,
			"completedAt":  task.CompletedAt,
			"updatedAt":    time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": task.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlanID removes all tasks of one plan instantiation (cascade delete).
func (r *mongoTrainingTaskRepository) DeleteByPlanID(ctx context.Context, studentTrainingPlanID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"studentTrainingPlanId": studentTrainingPlanID})
	return err
}

// EnsureTrainingTaskIndexes creates necessary indexes. Call during startup.
func EnsureTrainingTaskIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentTrainingPlanId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "studentTrainingPlanId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
