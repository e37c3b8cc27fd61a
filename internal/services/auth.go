package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"portfolio/internal/domain"
	"portfolio/internal/metrics"
	"portfolio/internal/util"
)

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 8

// Session identifies the authenticated admin of a request.
type Session struct {
	UserID   uint
	Username string
}

type sessionKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by WithSession.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthService implements the auth service
type AuthService struct {
	db     *gorm.DB
	tokens *util.TokenIssuer
	logger *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, tokens *util.TokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{db: db, tokens: tokens, logger: logger.With("component", "auth")}
}

// Login implements the login method
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, BadRequestError("Username and password are required")
	}

	s.logger.Info("login attempt", "username", username)

	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		metrics.RecordAuthAttempt(false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("login failed: user not found", "username", username)
			return nil, UnauthorizedError(msgInvalidCredentials)
		}
		s.logger.Error("login failed: database error", "username", username, "error", err)
		return nil, InternalError("Login failed", err)
	}

	if !util.CheckPasswordHash(password, user.HashedPassword) {
		s.logger.Info("login failed: invalid password", "username", username)
		metrics.RecordAuthAttempt(false)
		return nil, UnauthorizedError(msgInvalidCredentials)
	}

	if !user.IsActive {
		s.logger.Info("login failed: user inactive", "username", username)
		metrics.RecordAuthAttempt(false)
		return nil, UnauthorizedError("User account is inactive")
	}

	// Update last login
	now := s.db.NowFunc()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		s.logger.Warn("failed to record last login", "username", username, "error", err)
	}

	token, err := s.tokens.GenerateToken(&user)
	if err != nil {
		s.logger.Error("login failed: token generation error", "username", username, "error", err)
		return nil, InternalError("Login failed", err)
	}

	s.logger.Info("login successful", "username", username, "id", user.ID)
	metrics.RecordAuthAttempt(true)
	return &LoginResult{Token: token, User: &user}, nil
}

// Authenticate resolves a bearer token to the session of an active admin.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return Session{}, UnauthorizedError("Invalid or expired token")
	}
	id, err := claims.UserID()
	if err != nil {
		return Session{}, UnauthorizedError("Invalid or expired token")
	}

	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, UnauthorizedError("User not found")
		}
		return Session{}, InternalError("Failed to load user", err)
	}
	if !user.IsActive || !user.IsAdmin {
		return Session{}, UnauthorizedError("User account is inactive")
	}
	return Session{UserID: user.ID, Username: user.Username}, nil
}

// CurrentUser loads the account behind a session
func (s *AuthService) CurrentUser(ctx context.Context, session Session) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("User")
		}
		return nil, InternalError("Failed to load user", err)
	}
	return &user, nil
}

// ChangePassword replaces the session user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, session Session, current, next string) error {
	if current == "" || next == "" {
		return BadRequestError("Current and new password are required")
	}
	if len(next) < MinPasswordLength {
		return BadRequestError("New password must be at least 8 characters")
	}

	user, err := s.CurrentUser(ctx, session)
	if err != nil {
		return err
	}
	if !util.CheckPasswordHash(current, user.HashedPassword) {
		s.logger.Info("password change rejected: wrong current password", "username", user.Username)
		return UnauthorizedError("Current password is incorrect")
	}

	hashed, err := util.HashPassword(next)
	if err != nil {
		return InternalError("Failed to update password", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("hashed_password", hashed).Error; err != nil {
		s.logger.Error("password change failed: database error", "username", user.Username, "error", err)
		return InternalError("Failed to update password", err)
	}

	s.logger.Info("password changed", "username", user.Username)
	return nil
}

// EnsureAdmin seeds the admin account when no user exists yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.SetAdmin(ctx, username, password); err != nil {
		return false, err
	}
	s.logger.Warn("default admin created, change its password", "username", username)
	return true, nil
}

// SetAdmin creates the named admin or resets its password and flags.
func (s *AuthService) SetAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, BadRequestError("Username is required")
	}
	if password == "" {
		return nil, BadRequestError("Password is required")
	}

	hashed, err := util.HashPassword(password)
	if err != nil {
		return nil, InternalError("Failed to hash password", err)
	}

	var user domain.User
	err = s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = domain.User{Username: username, HashedPassword: hashed, IsActive: true, IsAdmin: true}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, InternalError("Failed to create user", err)
		}
	case err != nil:
		return nil, InternalError("Failed to load user", err)
	default:
		user.HashedPassword = hashed
		user.IsActive = true
		user.IsAdmin = true
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, InternalError("Failed to update user", err)
		}
	}
	return &user, nil
}
