package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/workexp/workexp-api/internal/models"
	"github.com/workexp/workexp-api/internal/store"
	"github.com/workexp/workexp-api/pkg/validation"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
	v    *validation.Validator
	cost int
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r, v: validation.New(), cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Register validates in, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.v.Check(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Name: in.Name, Email: in.Email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user when the password matches. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertFromClaims creates or updates a user using OIDC claims map
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return nil, store.ErrNotFound
	}
	return s.repo.UpsertBySub(ctx, &models.User{Sub: sub, Email: strings.ToLower(email), Name: name})
}

// FromClaims resolves the caller of a verified token. Locally issued tokens
// carry the user id as sub; anything else is treated as an external identity.
func (s *Service) FromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	if iss, _ := claims["iss"].(string); iss == LocalIssuer {
		return s.repo.GetByID(ctx, sub)
	}
	return s.UpsertFromClaims(ctx, claims)
}

// LocalIssuer is the iss claim of tokens signed with JWT_SECRET.
const LocalIssuer = "workexp-api"
