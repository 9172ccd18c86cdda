package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/freelancehub/tracker/internal/api/metrics"
	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

// DefaultBcryptCost matches the cost the credential file was seeded with.
const DefaultBcryptCost = 12

// AuthOptions tunes token lifetime and password hashing.
type AuthOptions struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService implements login, logout and user management.
type AuthService struct {
	creds    ports.CredentialStore
	users    ports.UserRepository
	throttle ports.LoginThrottle
	session  *domain.Session
	audit    ports.AuditService
	log      zerolog.Logger

	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthService(
	creds ports.CredentialStore,
	users ports.UserRepository,
	throttle ports.LoginThrottle,
	session *domain.Session,
	audit ports.AuditService,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = DefaultBcryptCost
	}
	return &AuthService{
		creds:      creds,
		users:      users,
		throttle:   throttle,
		session:    session,
		audit:      audit,
		log:        log.With().Str("component", "auth").Logger(),
		jwtSecret:  opts.JWTSecret,
		tokenTTL:   opts.TokenTTL,
		bcryptCost: opts.BcryptCost,
	}
}

// Login verifies the credentials, takes over the session seat and returns a
// token bound to the new session generation.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.Identity, error) {
	allowed, err := s.throttle.Allowed(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
	} else if !allowed {
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		return "", domain.Identity{}, domain.ErrTooManyAttempts
	}

	id, err := s.creds.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrAuthentication) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			if ferr := s.throttle.RecordFailure(ctx, username); ferr != nil {
				s.log.Warn().Err(ferr).Msg("failed to record login failure")
			}
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return "", domain.Identity{}, err
	}

	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}

	gen := s.session.Login(id.UserID, id.Role)
	token, err := s.generateToken(id, gen)
	if err != nil {
		s.session.Logout()
		return "", domain.Identity{}, fmt.Errorf("sign token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", id.UserID).Str("role", string(id.Role)).Msg("user logged in")
	return token, id, nil
}

// Logout clears the session; every token issued so far stops validating.
func (s *AuthService) Logout(_ context.Context) {
	s.session.Logout()
	s.log.Info().Msg("user logged out")
}

// Register hashes the password, stores the account and appends it to the
// credential file so it can log in.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if strings.ContainsAny(username, "\r\n") {
		return nil, fmt.Errorf("%w: username must be a single line", domain.ErrValidation)
	}
	if username == domain.CredentialSeparator {
		return nil, fmt.Errorf("%w: username %q is reserved", domain.ErrValidation, username)
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.creds.Append(ctx, created, string(hash)); err != nil {
		// Without a credential record the account cannot log in, so the
		// user row is rolled back and the username stays free.
		if _, derr := s.users.DeleteByID(ctx, created.ID); derr != nil {
			s.log.Error().Err(derr).Int64("user_id", created.ID).Msg("failed to roll back user after credential append failure")
		}
		return nil, fmt.Errorf("append credentials: %w", err)
	}

	s.audit.Record(ctx, "User", domain.AuditNoValue, created.Username)
	s.log.Info().Int64("user_id", created.ID).Str("role", string(role)).Msg("user registered")
	return created, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.users.FindAll(ctx)
}

// DeleteUser removes an account. The primary administrator cannot be deleted.
func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if id == domain.PrimaryAdminID {
		return domain.ErrProtectedUser
	}

	removed, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotFound
	}

	s.audit.Record(ctx, "User", fmt.Sprintf("User{id=%d}", id), domain.AuditDeleted)
	return nil
}

func (s *AuthService) generateToken(id domain.Identity, generation uint64) (string, error) {
	claims := jwt.MapClaims{
		"uid":  id.UserID,
		"role": string(id.Role),
		"gen":  generation,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
