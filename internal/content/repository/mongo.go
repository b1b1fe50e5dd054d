package repository

import (
	"context"
	"errors"

	"github.com/authorityai/authorityai/backend/go-services/internal/content"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores artifacts in the "content" collection keyed by string _id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the owner listing and session lookup indexes.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "sessionId", Value: 1}}},
	})
	return err
}

func (m *MongoRepo) Create(ctx context.Context, a *content.Artifact) error {
	_, err := m.col.InsertOne(ctx, a)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*content.Artifact, error) {
	return m.findOne(ctx, bson.M{"_id": id}, nil)
}

func (m *MongoRepo) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*content.Artifact, error) {
	var a content.Artifact
	if err := m.col.FindOne(ctx, filter, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (m *MongoRepo) ListByOwner(ctx context.Context, ownerID string, status content.Status) ([]*content.Artifact, error) {
	filter := bson.M{"ownerId": ownerID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := m.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*content.Artifact{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) FindBySession(ctx context.Context, ownerID, sessionID string) (*content.Artifact, error) {
	a, err := m.findOne(ctx, bson.M{"ownerId": ownerID, "sessionId": sessionID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if errors.Is(err, content.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func (m *MongoRepo) Update(ctx context.Context, id string, p content.Patch) (*content.Artifact, error) {
	set := bson.M{"updatedAt": p.At}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Body != nil {
		set["body"] = *p.Body
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.ExportKey != nil {
		set["exportKey"] = *p.ExportKey
	}
	if p.Status != nil && *p.Status == content.StatusPublished {
		// keep the first publication time
		if _, err := m.col.UpdateOne(ctx,
			bson.M{"_id": id, "publishedAt": bson.M{"$exists": false}},
			bson.M{"$set": bson.M{"publishedAt": p.At}}); err != nil {
			return nil, err
		}
	}
	update := bson.M{"$set": set}
	return m.findOneAndUpdate(ctx, id, update)
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (m *MongoRepo) IncrementAnalytics(ctx context.Context, id string, e content.Event) (*content.Artifact, error) {
	field, ok := e.Field()
	if !ok {
		return nil, content.ErrInvalidInput
	}
	return m.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"analytics." + field: 1}})
}

func (m *MongoRepo) findOneAndUpdate(ctx context.Context, id string, update interface{}) (*content.Artifact, error) {
	var a content.Artifact
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
