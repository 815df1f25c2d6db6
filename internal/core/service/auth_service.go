package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

// AuthService implements registration, local and provider login, and the
// current-user lookup.
type AuthService struct {
	users      ports.UserRepository
	identities ports.IdentityRepository
	cost       int
	// dummyHash is compared against when the email is unknown so that both
	// failure paths pay for one bcrypt comparison.
	dummyHash  []byte
	sessionTTL time.Duration
	logger     zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	identities ports.IdentityRepository,
	bcryptCost int,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("auth: generate dummy hash: %v", err))
	}
	return &AuthService{
		users:      users,
		identities: identities,
		cost:       bcryptCost,
		dummyHash:  dummy,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register validates the form and creates a local account with role "user".
// Uniqueness of username and email is left to the repository.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	switch {
	case in.Fullname == "":
		return nil, domain.Invalid("fullname", "fullname is required")
	case in.Username == "":
		return nil, domain.Invalid("username", "username is required")
	case in.Email == "":
		return nil, domain.Invalid("email", "email is required")
	case in.Password == "":
		return nil, domain.Invalid("password", "password is required")
	case in.Password != in.ConfirmPassword:
		return nil, domain.Invalid("confirmPassword", "passwords do not match")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, domain.Invalid("email", "email must be a valid email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Fullname:     in.Fullname,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Gender:       strings.TrimSpace(in.Gender),
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login checks local credentials. Unknown email, wrong password and inactive
// accounts all fail with domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Info().Str("user_id", user.ID).Msg("login refused for inactive user")
		return nil, domain.ErrInvalidCredentials
	}

	return s.newSession(user.ID, user.Fullname, user.Email, user.Role, domain.ProviderLocal), nil
}

// LoginWithProvider links (or reuses) the identity for the provider subject.
func (s *AuthService) LoginWithProvider(ctx context.Context, profile domain.ProviderProfile) (*domain.Session, error) {
	if profile.Provider == "" || profile.Subject == "" {
		return nil, domain.ErrInvalidCredentials
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))

	identity, err := s.identities.FindOrCreate(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("provider login: %w", err)
	}

	s.logger.Info().Str("identity_id", identity.ID).Str("provider", identity.Provider).Msg("provider login")
	return s.newSession(identity.ID, identity.Name, identity.Email, identity.Role, identity.Provider), nil
}

// CurrentUser re-reads the account behind the session so that deleted or
// deactivated users stop being reported as signed in.
func (s *AuthService) CurrentUser(ctx context.Context, sess *domain.Session) (*domain.CurrentUser, error) {
	if sess == nil {
		return nil, nil
	}

	if sess.Provider == domain.ProviderLocal {
		user, err := s.users.FindByID(ctx, sess.UserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("current user: %w", err)
		}
		if !user.IsActive {
			return nil, nil
		}
		return &domain.CurrentUser{
			ID:       user.ID,
			Fullname: user.Fullname,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
			Provider: domain.ProviderLocal,
		}, nil
	}

	identity, err := s.identities.FindByID(ctx, sess.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &domain.CurrentUser{
		ID:       identity.ID,
		Fullname: identity.Name,
		Email:    identity.Email,
		Role:     identity.Role,
		Provider: identity.Provider,
		Picture:  identity.Picture,
	}, nil
}

// EnsureAdmin creates an admin account for email unless one already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("ensure admin: hash password: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.users.Create(ctx, &domain.User{
		Fullname:     "Administrator",
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil && !errors.Is(err, domain.ErrUserExists) {
		return fmt.Errorf("ensure admin: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("bootstrap admin ensured")
	return nil
}

func (s *AuthService) newSession(userID, name, email, role, provider string) *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		UserID:    userID,
		Name:      name,
		Email:     email,
		Role:      role,
		Provider:  provider,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
}
