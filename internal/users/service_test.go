package users

import (
	"context"
	"testing"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/models"
	"github.com/authorityai/authorityai/backend/go-services/internal/scoring"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	lastUpsert *models.User
	upsertErr  error
}

func (f *fakeRepo) Create(ctx context.Context, u *models.User) error { return nil }
func (f *fakeRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return nil, nil
}
func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (f *fakeRepo) UpdateProfile(ctx context.Context, id string, p models.Profile, onboarded bool) (*models.User, error) {
	return nil, nil
}

func (f *fakeRepo) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	f.lastUpsert = u
	now := time.Now().UTC()
	if f.lastUpsert.CreatedAt.IsZero() {
		f.lastUpsert.CreatedAt = now
	}
	f.lastUpsert.UpdatedAt = now
	ret := *f.lastUpsert
	ret.ID = "abcd1234"
	return &ret, f.upsertErr
}

func newTestService() *Service {
	s := NewService(NewMemoryRepository(), scoring.Fixed{Value: 64})
	s.bcryptCost = bcrypt.MinCost
	return s
}

func TestUpsertFromClaims(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()
	claims := map[string]interface{}{
		"sub":   "sub-123",
		"email": "x@example.com",
		"name":  "X User",
	}

	u, err := svc.UpsertFromClaims(ctx, claims)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "sub-123", u.Sub)
	require.Equal(t, "x@example.com", u.Email)
	require.NotNil(t, repo.lastUpsert)
	require.NotEmpty(t, u.ID)

	u2, err := svc.UpsertFromClaims(ctx, map[string]interface{}{"email": "y@e.com"})
	require.NoError(t, err)
	require.Nil(t, u2)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "Ada@Example.com ", Password: "secret1", Company: "Acme", Role: "cto"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, "starter", u.Tier)
	require.NotEqual(t, "secret1", u.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret2"})
	require.ErrorIs(t, err, ErrUserExists)

	got, err := svc.Authenticate(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "", Email: "a@b.c", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.c", Password: "123"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompleteOnboarding(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.False(t, u.OnboardingCompleted)

	_, err = svc.CompleteOnboarding(ctx, u.ID, OnboardingInput{Expertise: []string{" "}})
	require.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.CompleteOnboarding(ctx, u.ID, OnboardingInput{
		Expertise:      []string{"Cybersecurity", ""},
		VoiceProfile:   " direct ",
		WritingSamples: []string{"sample"},
	})
	require.NoError(t, err)
	require.True(t, got.OnboardingCompleted)
	require.Equal(t, []string{"Cybersecurity"}, got.Profile.Expertise)
	require.Equal(t, "direct", got.Profile.VoiceProfile)
	require.Equal(t, 64, got.Profile.AuthorityScore)

	_, err = svc.CompleteOnboarding(ctx, "missing", OnboardingInput{Expertise: []string{"x"}})
	require.ErrorIs(t, err, ErrNotFound)
}
