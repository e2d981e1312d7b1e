package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/auth"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/repository"
	"github.com/sakif/civic-sync/internal/store"
)

// AuthMode selects how credentials are checked.
type AuthMode string

const (
	// AuthModeMock accepts any credentials and signs in a canned profile.
	AuthModeMock AuthMode = "mock"

	// AuthModeStrict verifies email and password against stored bcrypt hashes.
	AuthModeStrict AuthMode = "strict"
)

// Valid reports whether m is a known mode.
func (m AuthMode) Valid() bool {
	return m == AuthModeMock || m == AuthModeStrict
}

// MinPasswordLength applies to strict-mode registration.
const MinPasswordLength = 8

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// AuthResult bundles the signed-in user and the token for their cookie.
type AuthResult struct {
	User  model.User
	Token string
}

// AuthService signs users in and out.
//
// DEPENDENCIES:
//   - sessions   *store.AuthStore           → who is signed in right now
//   - users      repository.UserRepository  → accounts (strict mode only)
//   - tokens     *auth.TokenService         → session cookie JWTs
//   - passwords  *auth.PasswordService      → bcrypt (strict mode only)
//
// In mock mode users and passwords may be nil. The admin portal is
// additionally gated by adminCode in both modes.
type AuthService struct {
	mode      AuthMode
	adminCode string
	sessions  *store.AuthStore
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService. It refuses an empty admin code,
// and strict mode without a user repository and password service.
func NewAuthService(
	mode AuthMode,
	adminCode string,
	sessions *store.AuthStore,
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) (*AuthService, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("service/auth: unknown auth mode %q", mode)
	}
	if adminCode == "" {
		return nil, errors.New("service/auth: admin code is required")
	}
	if mode == AuthModeStrict && (users == nil || passwords == nil) {
		return nil, errors.New("service/auth: strict mode needs a user repository and password service")
	}
	return &AuthService{
		mode:      mode,
		adminCode: adminCode,
		sessions:  sessions,
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}, nil
}

// Mode returns the configured mode.
func (s *AuthService) Mode() AuthMode {
	return s.mode
}

// Login signs a user in through the citizen portal. role is the role the
// user picked on the form; the citizen portal never grants admin, so
// RoleAdmin is treated as RoleCitizen.
//
// MOCK MODE: always succeeds and ignores the password.
// STRICT MODE: the email and password must match a stored account, whose
// own role wins over the requested one.
func (s *AuthService) Login(ctx context.Context, email, password string, role model.Role) (*AuthResult, error) {
	if role == model.RoleAdmin {
		role = model.RoleCitizen
	}
	return s.login(ctx, email, password, role)
}

// AdminLogin signs a user in through the admin portal. code must match the
// configured admin code or the attempt is forbidden before any credential
// is looked at. In strict mode the account must also have the admin role.
func (s *AuthService) AdminLogin(ctx context.Context, email, password, code string) (*AuthResult, error) {
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.adminCode)) != 1 {
		s.logger.Warn("admin login rejected: wrong admin code", slog.String("email", strings.TrimSpace(email)))
		return nil, apperror.Forbidden("invalid admin code")
	}
	return s.login(ctx, email, password, model.RoleAdmin)
}

func (s *AuthService) login(ctx context.Context, email, password string, role model.Role) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	var user model.User
	if s.mode == AuthModeMock {
		user = s.sessions.Login(email, password, role)
	} else {
		u, err := s.verify(ctx, email, password)
		if err != nil {
			return nil, err
		}
		if role == model.RoleAdmin && u.Role != model.RoleAdmin {
			return nil, apperror.Forbidden("this account does not have administrator access")
		}
		s.sessions.Authenticate(*u)
		user, _ = s.sessions.Current(u.ID)
	}

	token, err := s.tokens.Generate(auth.IdentityOf(user))
	if err != nil {
		s.sessions.Logout(user.ID)
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed in",
		slog.String("userID", user.ID),
		slog.String("role", string(user.Role)),
		slog.String("mode", string(s.mode)),
	)
	return &AuthResult{User: user, Token: token}, nil
}

// Register creates a citizen account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	profile := model.User{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
		Bio:     strings.TrimSpace(in.Bio),
		Avatar:  strings.TrimSpace(in.Avatar),
	}

	var user model.User
	if s.mode == AuthModeMock {
		user = s.sessions.Register(profile)
	} else {
		u, err := s.createAccount(ctx, profile, in.Password, model.RoleCitizen)
		if err != nil {
			return nil, err
		}
		s.sessions.Authenticate(u)
		user, _ = s.sessions.Current(u.ID)
	}

	token, err := s.tokens.Generate(auth.IdentityOf(user))
	if err != nil {
		s.sessions.Logout(user.ID)
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID), slog.String("mode", string(s.mode)))
	return &AuthResult{User: user, Token: token}, nil
}

// Logout ends userID's session. Tokens issued earlier stop working.
func (s *AuthService) Logout(userID string) {
	s.sessions.Logout(userID)
	s.logger.Info("user signed out", slog.String("userID", userID))
}

// Current returns the signed-in profile for userID.
func (s *AuthService) Current(userID string) (model.User, error) {
	u, ok := s.sessions.Current(userID)
	if !ok {
		return model.User{}, apperror.Unauthorized("not signed in")
	}
	return u, nil
}

// verify checks strict-mode credentials. Unknown email and wrong password
// produce the same error so callers can't tell which accounts exist.
func (s *AuthService) verify(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}
	return u, nil
}

func (s *AuthService) createAccount(ctx context.Context, profile model.User, password string, role model.Role) (model.User, error) {
	if profile.Name == "" {
		return model.User{}, apperror.ValidationFailed("name", "name is required")
	}
	if _, err := mail.ParseAddress(profile.Email); err != nil {
		return model.User{}, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return model.User{}, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return model.User{}, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("service/auth: %w", err)
	}

	u := profile
	u.Role = role
	u.PasswordHash = hash
	if err := s.users.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("service/auth: creating user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates an administrator account for email in strict mode if
// none exists yet. It is how the first admin gets in. Mock mode needs no
// accounts, so there it does nothing.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if s.mode != AuthModeStrict || email == "" {
		return nil
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			s.logger.Warn("bootstrap admin email belongs to a non-admin account", slog.String("email", email))
		}
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/auth: looking up admin %s: %w", email, err)
	}

	u, err := s.createAccount(ctx, model.User{Name: name, Email: email}, password, model.RoleAdmin)
	if err != nil {
		return err
	}

	s.logger.Info("admin account created", slog.String("userID", u.ID), slog.String("email", u.Email))
	return nil
}
