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

const topicCollectionName = "plan_topics"

// mongoPlanTopicRepository implements repository.PlanTopicRepository.
type mongoPlanTopicRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanTopicRepository creates a new PlanTopic repository.
func NewMongoPlanTopicRepository(db *mongo.Database) repository.PlanTopicRepository {
	return &mongoPlanTopicRepository{
		collection: db.Collection(topicCollectionName),
	}
}

// Create inserts a new topic under a section.
func (r *mongoPlanTopicRepository) Create(ctx context.Context, topic *domain.PlanTopic) (primitive.ObjectID, error) {
	if topic.SectionID == primitive.NilObjectID || topic.Name == "" {
		return primitive.NilObjectID, errors.New("topic requires sectionId and name")
	}
	topic.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	topic.CreatedAt = now
	topic.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, topic)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted topic ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single topic by its ID.
func (r *mongoPlanTopicRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanTopic, error) {
	var topic domain.PlanTopic
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&topic)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &topic, nil
}

// GetByIDs retrieves topics by id set. Missing ids are skipped.
func (r *mongoPlanTopicRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanTopic, error) {
	if len(ids) == 0 {
		return []domain.PlanTopic{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// GetBySectionID retrieves all topics of one section.
func (r *mongoPlanTopicRepository) GetBySectionID(ctx context.Context, sectionID primitive.ObjectID) ([]domain.PlanTopic, error) {
	return r.find(ctx, bson.M{"sectionId": sectionID})
}

// GetBySectionIDs retrieves all topics whose section is in the given set.
func (r *mongoPlanTopicRepository) GetBySectionIDs(ctx context.Context, sectionIDs []primitive.ObjectID) ([]domain.PlanTopic, error) {
	if len(sectionIDs) == 0 {
		return []domain.PlanTopic{}, nil
	}
	return r.find(ctx, bson.M{"sectionId": bson.M{"$in": sectionIDs}})
}

func (r *mongoPlanTopicRepository) find(ctx context.Context, filter bson.M) ([]domain.PlanTopic, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var topics []domain.PlanTopic
	if err = cursor.All(ctx, &topics); err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []domain.PlanTopic{}
	}
	return topics, nil
}

// Update persists the topic's editable fields, including a re-parent to a
// different section.
func (r *mongoPlanTopicRepository) Update(ctx context.Context, topic *domain.PlanTopic) error {
	if topic.ID == primitive.NilObjectID {
		return errors.New("topic ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"sectionId": topic.SectionID,
			"name":      topic.Name,
			"sortOrder": topic.SortOrder,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": topic.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single topic.
func (r *mongoPlanTopicRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteBySectionIDs removes all topics under the given sections (cascade delete).
func (r *mongoPlanTopicRepository) DeleteBySectionIDs(ctx context.Context, sectionIDs []primitive.ObjectID) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"sectionId": bson.M{"$in": sectionIDs}})
	return err
}

// EnsurePlanTopicIndexes creates necessary indexes. Call during startup.
func EnsurePlanTopicIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sectionId", Value: 1}, {Key: "sortOrder", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
