package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Session is returned by Register and Login.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Profile   models.Profile `json:"profile"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service registers and signs in users.
type Service struct {
	profiles    repository.ProfileRepository
	tokens      *Tokens
	bcryptCost  int
	adminEmails map[string]bool
	now         func() time.Time
}

// NewService creates an auth service. Accounts registered with one of
// adminEmails become admins.
func NewService(profiles repository.ProfileRepository, tokens *Tokens, bcryptCost int, adminEmails []string) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &Service{
		profiles:    profiles,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
		adminEmails: admins,
		now:         time.Now,
	}
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		IsAdmin:      s.adminEmails[email],
		CreatedAt:    s.now().UTC(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create profile")
	}

	return s.session(profile)
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	profile, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "get profile")
	}
	if !CheckPassword(profile.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(profile)
}

func (s *Service) session(p *models.Profile) (*Session, error) {
	role := RoleCustomer
	if p.IsAdmin {
		role = RoleAdmin
	}
	token, expires, err := s.tokens.Issue(p.ID, p.Email, role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Profile: *p}, nil
}

// Profile returns the stored profile of userID.
func (s *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// ListProfiles returns every account for the back-office.
func (s *Service) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return s.profiles.GetAll(ctx)
}

// SetAdmin grants or revokes admin access.
func (s *Service) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	return s.profiles.SetAdmin(ctx, userID, isAdmin)
}
