package feeds

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// MongoFeed reads the document store's users collection. The document id is
// the user's email.
type MongoFeed struct {
	collection *mongo.Collection
	logger     ectologger.Logger
}

func NewMongoFeed(client *mongo.Client, dbName, collectionName string, logger ectologger.Logger) *MongoFeed {
	return &MongoFeed{
		collection: client.Database(dbName).Collection(collectionName),
		logger:     logger,
	}
}

func (f *MongoFeed) Source() models.Source {
	return models.SourceMongo
}

type mongoUserDocument struct {
	Email    string              `bson:"_id"`
	Name     string              `bson:"name"`
	Phone    string              `bson:"phone"`
	Friends  []string            `bson:"friends"`
	Likes    []models.RawLike    `bson:"likes"`
	Messages []models.RawMessage `bson:"messages"`
}

func (f *MongoFeed) Read(ctx context.Context) ([]models.RawPersonRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "feeds.MongoFeed.Read")
	defer span.End()

	cursor, err := f.collection.Find(ctx, bson.D{})
	if err != nil {
		f.logger.WithContext(ctx).WithError(err).Error("Failed to query mongo users collection")
		return nil, httperror.NewHTTPErrorf(http.StatusBadGateway, "failed to query mongo: %v", err)
	}
	defer func() {
		if closeErr := cursor.Close(ctx); closeErr != nil {
			f.logger.WithContext(ctx).WithError(closeErr).Warn("Failed to close mongo cursor")
		}
	}()

	var records []models.RawPersonRecord
	for cursor.Next(ctx) {
		var doc mongoUserDocument
		if err := cursor.Decode(&doc); err != nil {
			f.logger.WithContext(ctx).WithError(err).Error("Failed to decode mongo document")
			return nil, httperror.NewHTTPErrorf(http.StatusBadGateway, "failed to decode mongo document: %v", err)
		}
		records = append(records, recordFromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		f.logger.WithContext(ctx).WithError(err).Error("Mongo cursor failed")
		return nil, httperror.NewHTTPErrorf(http.StatusBadGateway, "mongo cursor failed: %v", err)
	}

	f.logger.WithContext(ctx).WithField("records", len(records)).Info("Read mongo feed")
	return records, nil
}

func recordFromDocument(doc mongoUserDocument) models.RawPersonRecord {
	return models.RawPersonRecord{
		Source:   models.SourceMongo,
		Name:     strings.TrimSpace(doc.Name),
		Email:    strings.TrimSpace(doc.Email),
		Phone:    strings.TrimSpace(doc.Phone),
		Friends:  doc.Friends,
		Likes:    doc.Likes,
		Messages: doc.Messages,
	}
}
