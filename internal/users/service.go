package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/authorityai/authorityai/backend/go-services/internal/models"
	"github.com/authorityai/authorityai/backend/go-services/internal/scoring"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
)

// RegisterInput is the payload of a local account sign-up.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Company  string `json:"company"`
	Role     string `json:"role"`
}

// OnboardingInput is the profile submitted at the end of onboarding.
type OnboardingInput struct {
	Expertise      []string `json:"expertise"`
	VoiceProfile   string   `json:"voiceProfile"`
	WritingSamples []string `json:"writingSamples"`
	Goals          []string `json:"goals"`
}

// Service encapsulates user-related business logic
type Service struct {
	repo       UserRepository
	authority  scoring.AuthorityScorer
	bcryptCost int
}

func NewService(r UserRepository, authority scoring.AuthorityScorer) *Service {
	if authority == nil {
		authority = scoring.NewPlaceholderAuthority(nil)
	}
	return &Service{repo: r, authority: authority, bcryptCost: bcrypt.DefaultCost}
}

// Register creates a local account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Email == "" || len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: name, email and a password of at least 6 characters are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Company:      in.Company,
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks a local account's password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpsertFromClaims creates or updates a user using OIDC claims map
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return nil, nil
	}
	u := &models.User{
		Sub:   sub,
		Email: email,
		Name:  name,
	}
	return s.repo.UpsertBySub(ctx, u)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// CompleteOnboarding stores the onboarding profile, marks the account onboarded and
// assigns the initial authority score.
func (s *Service) CompleteOnboarding(ctx context.Context, id string, in OnboardingInput) (*models.User, error) {
	expertise := compact(in.Expertise)
	if len(expertise) == 0 {
		return nil, fmt.Errorf("%w: at least one expertise area is required", ErrInvalidInput)
	}
	samples := compact(in.WritingSamples)
	p := models.Profile{
		Expertise:      expertise,
		VoiceProfile:   strings.TrimSpace(in.VoiceProfile),
		WritingSamples: samples,
		Goals:          compact(in.Goals),
		AuthorityScore: s.authority.AuthorityScore(ctx, expertise, samples),
	}
	u, err := s.repo.UpdateProfile(ctx, id, p, true)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
