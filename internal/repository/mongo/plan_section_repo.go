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

const sectionCollectionName = "plan_sections"

// mongoPlanSectionRepository implements repository.PlanSectionRepository.
type mongoPlanSectionRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanSectionRepository creates a new PlanSection repository.
func NewMongoPlanSectionRepository(db *mongo.Database) repository.PlanSectionRepository {
	return &mongoPlanSectionRepository{
		collection: db.Collection(sectionCollectionName),
	}
}

// Create inserts a new section under a plan.
func (r *mongoPlanSectionRepository) Create(ctx context.Context, section *domain.PlanSection) (primitive.ObjectID, error) {
	if section.PlanID == primitive.NilObjectID || section.Name == "" {
		return primitive.NilObjectID, errors.New("section requires planId and name")
	}
	section.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, section)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted section ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single section by its ID.
func (r *mongoPlanSectionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanSection, error) {
	var section domain.PlanSection
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&section)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &section, nil
}

// GetByIDs retrieves sections by id set. Missing ids are skipped.
func (r *mongoPlanSectionRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.PlanSection, error) {
	if len(ids) == 0 {
		return []domain.PlanSection{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// GetByPlanID retrieves all sections of a plan. Callers order them with
// domain.SortSections; Mongo sorts missing keys first, which breaks the
// nulls-last contract, so ordering happens in memory.
func (r *mongoPlanSectionRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSection, error) {
	return r.find(ctx, bson.M{"planId": planID})
}

func (r *mongoPlanSectionRepository) find(ctx context.Context, filter bson.M) ([]domain.PlanSection, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sections []domain.PlanSection
	if err = cursor.All(ctx, &sections); err != nil {
		return nil, err
	}
	if sections == nil {
		sections = []domain.PlanSection{}
	}
	return sections, nil
}

// Update persists the section's editable fields, including a re-parent to a
// different plan.
func (r *mongoPlanSectionRepository) Update(ctx context.Context, section *domain.PlanSection) error {
	if section.ID == primitive.NilObjectID {
		return errors.New("section ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"planId":       section.PlanID,
			"name":         section.Name,
			"expectedDays": section.ExpectedDays,
			"sortOrder":    section.SortOrder,
			"updatedAt":    time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": section.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single section.
func (r *mongoPlanSectionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlanID removes all sections under a plan (cascade delete).
func (r *mongoPlanSectionRepository) DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID})
	return err
}

// EnsurePlanSectionIndexes creates necessary indexes. Call during startup.
func EnsurePlanSectionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "sortOrder", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
