package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertBySub(ctx context.Context, u *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, p models.Profile, onboarded bool) (*models.User, error)
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection and makes
// sure email is unique.
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	stamp(u)
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{"sub": u.Sub}
	update := bson.M{
		"$set": bson.M{
			"email":     normalizeEmail(u.Email),
			"name":      u.Name,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"tier":      "starter",
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id string, p models.Profile, onboarded bool) (*models.User, error) {
	update := bson.M{"$set": bson.M{
		"profile":             p,
		"onboardingCompleted": onboarded,
		"updatedAt":           time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &updated, nil
}

// MemoryRepository is the in-process UserRepository used when MongoDB is not configured
// and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.User
	email map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]*models.User{}, email: map[string]string{}}
}

func (m *MemoryRepository) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeEmail(u.Email)
	if _, ok := m.email[key]; ok {
		return ErrUserExists
	}
	stamp(u)
	cp := *u
	m.byID[u.ID] = &cp
	m.email[key] = u.ID
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	id, ok := m.email[normalizeEmail(email)]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return m.GetByID(ctx, id)
}

func (m *MemoryRepository) UpsertBySub(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, existing := range m.byID {
		if existing.Sub == u.Sub {
			existing.Email = normalizeEmail(u.Email)
			existing.Name = u.Name
			existing.UpdatedAt = now
			cp := *existing
			return &cp, nil
		}
	}
	stamp(u)
	cp := *u
	m.byID[u.ID] = &cp
	if u.Email != "" {
		m.email[normalizeEmail(u.Email)] = u.ID
	}
	ret := cp
	return &ret, nil
}

func (m *MemoryRepository) UpdateProfile(_ context.Context, id string, p models.Profile, onboarded bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	u.Profile = p
	u.OnboardingCompleted = onboarded
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func stamp(u *models.User) {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.Tier == "" {
		u.Tier = "starter"
	}
	u.Email = normalizeEmail(u.Email)
	u.UpdatedAt = now
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
