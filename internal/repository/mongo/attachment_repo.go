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

const attachmentCollectionName = "report_attachments"

// mongoAttachmentRepository implements repository.ReportAttachmentRepository.
type mongoAttachmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAttachmentRepository creates a new ReportAttachment repository.
func NewMongoAttachmentRepository(db *mongo.Database) repository.ReportAttachmentRepository {
	return &mongoAttachmentRepository{
		collection: db.Collection(attachmentCollectionName),
	}
}

// Create inserts attachment metadata for a report.
func (r *mongoAttachmentRepository) Create(ctx context.Context, attachment *domain.ReportAttachment) (primitive.ObjectID, error) {
	if attachment.ReportID == primitive.NilObjectID || attachment.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("attachment requires reportId and s3ObjectKey")
	}
	attachment.ID = primitive.NewObjectID()
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, attachment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted attachment ID")
	}
	return insertedID, nil
}

// GetByID retrieves attachment metadata by its ID.
func (r *mongoAttachmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ReportAttachment, error) {
	var attachment domain.ReportAttachment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&attachment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

// GetByReportID retrieves all attachments of one report, upload order.
func (r *mongoAttachmentRepository) GetByReportID(ctx context.Context, reportID primitive.ObjectID) ([]domain.ReportAttachment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"reportId": reportID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attachments []domain.ReportAttachment
	if err = cursor.All(ctx, &attachments); err != nil {
		return nil, err
	}
	if attachments == nil {
		attachments = []domain.ReportAttachment{}
	}
	return attachments, nil
}

// EnsureAttachmentIndexes creates necessary indexes. Call during startup.
func EnsureAttachmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reportId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
