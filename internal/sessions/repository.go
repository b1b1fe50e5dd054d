package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository persists refresh sessions keyed by token hash.
// GetByHash returns (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByHash(ctx context.Context, hash string) (*Session, error)
	DeleteByHash(ctx context.Context, hash string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// MongoRepository implements Repository using a Mongo collection. A TTL index on
// expiresAt lets the server reap stale sessions.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// EnsureIndexes creates the token lookup and expiry indexes.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, s *Session) error {
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) GetByHash(ctx context.Context, hash string) (*Session, error) {
	var s Session
	if err := r.col.FindOne(ctx, bson.M{"tokenHash": hash}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) DeleteByHash(ctx context.Context, hash string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"tokenHash": hash})
	return err
}

func (r *MongoRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// MemoryRepository keeps sessions in process memory.
type MemoryRepository struct {
	mu    sync.Mutex
	byTok map[string]Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byTok: map[string]Session{}}
}

func (m *MemoryRepository) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTok[s.TokenHash] = *s
	return nil
}

func (m *MemoryRepository) GetByHash(_ context.Context, hash string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byTok[hash]
	if !ok {
		return nil, nil
	}
	if s.Expired(time.Now().UTC()) {
		delete(m.byTok, hash)
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryRepository) DeleteByHash(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byTok, hash)
	return nil
}

func (m *MemoryRepository) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, s := range m.byTok {
		if s.UserID == userID {
			delete(m.byTok, h)
		}
	}
	return nil
}
