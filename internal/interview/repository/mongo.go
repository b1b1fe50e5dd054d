package repository

import (
	"context"
	"errors"

	"github.com/authorityai/authorityai/backend/go-services/internal/interview"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores sessions in the "interviews" collection keyed by string _id.
// Updates replace the whole document conditioned on the stored version.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the owner listing index.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (m *MongoRepo) Create(ctx context.Context, s *interview.Session) error {
	_, err := m.col.InsertOne(ctx, s)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*interview.Session, error) {
	var s interview.Session
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interview.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (m *MongoRepo) Update(ctx context.Context, s *interview.Session) error {
	expected := s.Version
	next := s.Clone()
	next.Version = expected + 1
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": s.ID, "version": expected}, next)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := m.col.CountDocuments(ctx, bson.M{"_id": s.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return interview.ErrNotFound
		}
		return interview.ErrConflict
	}
	s.Version = next.Version
	return nil
}

func (m *MongoRepo) ListByOwner(ctx context.Context, ownerID string) ([]*interview.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*interview.Session{}
	for cur.Next(ctx) {
		var s interview.Session
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}
