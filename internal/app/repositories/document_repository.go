package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/dberrors"
	"github.com/yigit/agencyportal/internal/pkg/logger"
)

// DocumentsCollection holds uploaded documents with their base64 payload
const DocumentsCollection = "documents"

// DocumentRepository stores documents in MongoDB
type DocumentRepository struct {
	collection *mongo.Collection
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{collection: db.Collection(DocumentsCollection)}
}

func documentObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewResourceNotFoundError("document not found")
	}
	return oid, nil
}

// Create inserts a document and assigns its ID
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	doc.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		logger.Error().Err(err).Str("applicationID", doc.ApplicationID).Msg("Error inserting document")
		return fmt.Errorf("error inserting document: %w", err)
	}
	return nil
}

// GetByID returns a document including its payload
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	oid, err := documentObjectID(id)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{}
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(doc); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("document not found")
		}
		logger.Error().Err(err).Str("documentID", id).Msg("Error fetching document")
		return nil, fmt.Errorf("error fetching document: %w", err)
	}
	return doc, nil
}

// List returns document metadata, newest first, without payloads
func (r *DocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]*models.Document, error) {
	query := bson.M{}
	if filter.ApplicationID != "" {
		query["applicationId"] = filter.ApplicationID
	}
	if filter.AgencyID != "" {
		query["agencyId"] = filter.AgencyID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}

	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing documents")
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []*models.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus sets the review status of one document
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, remarks string) error {
	oid, err := documentObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"status": status, "remarks": remarks, "updatedAt": time.Now().UTC()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		logger.Error().Err(err).Str("documentID", id).Msg("Error updating document status")
		return fmt.Errorf("error updating document status: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewResourceNotFoundError("document not found")
	}
	return nil
}

// UpdateStatusByApplication sets the status of every document of an application
func (r *DocumentRepository) UpdateStatusByApplication(ctx context.Context, applicationID string, status models.DocumentStatus) (int64, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	res, err := r.collection.UpdateMany(ctx, bson.M{"applicationId": applicationID}, update)
	if err != nil {
		logger.Error().Err(err).Str("applicationID", applicationID).Msg("Error updating application documents")
		return 0, fmt.Errorf("error updating application documents: %w", err)
	}
	return res.ModifiedCount, nil
}

// Delete removes one document
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	oid, err := documentObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		logger.Error().Err(err).Str("documentID", id).Msg("Error deleting document")
		return fmt.Errorf("error deleting document: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NewResourceNotFoundError("document not found")
	}
	return nil
}

// DeleteByApplication removes every document of an application
func (r *DocumentRepository) DeleteByApplication(ctx context.Context, applicationID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"applicationId": applicationID})
	if err != nil {
		logger.Error().Err(err).Str("applicationID", applicationID).Msg("Error deleting application documents")
		return 0, fmt.Errorf("error deleting application documents: %w", err)
	}
	return res.DeletedCount, nil
}
