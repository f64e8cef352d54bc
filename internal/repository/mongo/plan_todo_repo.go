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

const todoCollectionName = "plan_todos"

// mongoPlanTodoRepository implements repository.PlanTodoRepository.
type mongoPlanTodoRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanTodoRepository creates a new PlanTodo repository.
func NewMongoPlanTodoRepository(db *mongo.Database) repository.PlanTodoRepository {
	return &mongoPlanTodoRepository{
		collection: db.Collection(todoCollectionName),
	}
}

// Create inserts a new todo under a topic.
func (r *mongoPlanTodoRepository) Create(ctx context.Context, todo *domain.PlanTodo) (primitive.ObjectID, error) {
	if todo.TopicID == primitive.NilObjectID || todo.Name == "" {
		return primitive.NilObjectID, errors.New("todo requires topicId and name")
	}
	todo.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, todo)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted todo ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single todo by its ID.
func (r *mongoPlanTodoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTodo, error) {
	var todo domain.PlanTodo
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

// GetByIDs retrieves todos by id set. Ids with no surviving todo are
// skipped; tasks referencing deleted todos handle the absence themselves.
func (r *mongoPlanTodoRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanTodo, error) {
	if len(ids) == 0 {
		return []domain.PlanTodo{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// GetByTopicID retrieves all todos of one topic.
func (r *mongoPlanTodoRepository) GetByTopicID(ctx context.Context, topicID primitive.ObjectID) ([]domain.PlanTodo, error) {
	return r.find(ctx, bson.M{"topicId": topicID})
}

// GetByTopicIDs retrieves all todos whose topic is in the given set.
func (r *mongoPlanTodoRepository) GetByTopicIDs(ctx context.Context, topicIDs []primitive.ObjectID) ([]domain.PlanTodo, error) {
	if len(topicIDs) == 0 {
		return []domain.PlanTodo{}, nil
	}
	return r.find(ctx, bson.M{"topicId": bson.M{"$in": topicIDs}})
}

func (r *mongoPlanTodoRepository) find(ctx context.Context, filter bson.M) ([]domain.PlanTodo, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var todos []domain.PlanTodo
	if err = cursor.All(ctx, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []domain.PlanTodo{}
	}
	return todos, nil
}

// Update persists the todo's editable fields, including a re-parent to a
// different topic.
func (r *mongoPlanTodoRepository) Update(ctx context.Context, todo *domain.PlanTodo) error {
	if todo.ID == primitive.NilObjectID {
		return errors.New("todo ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"topicId":   todo.TopicID,
			"name":      todo.Name,
			"dayIndex":  todo.DayIndex,
			"sortOrder": todo.SortOrder,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": todo.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single todo. Existing StudentTrainingTask rows that
// reference it are deliberately left untouched.
func (r *mongoPlanTodoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByTopicIDs removes all todos under the given topics (cascade delete).
func (r *mongoPlanTodoRepository) DeleteByTopicIDs(ctx context.Context, topicIDs []primitive.ObjectID) error {
	if len(topicIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"topicId": bson.M{"$in": topicIDs}})
	return err
}

// EnsurePlanTodoIndexes creates necessary indexes. Call during startup.
func EnsurePlanTodoIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "topicId", Value: 1}, {Key: "dayIndex", Value: 1}, {Key: "sortOrder", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
