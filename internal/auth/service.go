package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pattern-scanner/config"
	"pattern-scanner/internal/logging"
)

// User is a registered user. Accounts live in memory; the scanner does not
// persist users, an operator seeds them at startup.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

type session struct {
	userID    string
	tokenHash string
	expiresAt time.Time
}

// Service implements registration, login and token refresh on top of an
// in-memory user store.
type Service struct {
	jwt      *JWTManager
	password *PasswordManager
	logger   *logging.Logger

	mu       sync.RWMutex
	users    map[string]*User   // keyed by lowercase email
	sessions map[string]session // keyed by refresh token hash
}

// NewService creates an authentication service from configuration.
func NewService(cfg config.AuthConfig) *Service {
	return &Service{
		jwt:      NewJWTManager(cfg.JWTSecret, cfg.AccessTokenDuration, cfg.RefreshTokenDuration),
		password: NewPasswordManager(DefaultBcryptCost, cfg.MinPasswordLength),
		logger:   logging.WithComponent("auth"),
		users:    make(map[string]*User),
		sessions: make(map[string]session),
	}
}

// JWT exposes the token manager for middleware wiring.
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// SeedAdmin creates an admin account if the email is not taken. Used at
// startup so a fresh deployment has a usable login.
func (s *Service) SeedAdmin(email, password string) error {
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return nil
	}

	hash, err := s.password.HashPassword(password)
	if err != nil {
		return err
	}

	s.users[email] = &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Admin",
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    time.Now(),
	}
	s.logger.Info("Seeded admin account", "email", email)
	return nil
}

// Register creates a new user account and returns a logged-in response.
func (s *Service) Register(req RegisterRequest) (*LoginResponse, error) {
	if err := s.password.ValidatePasswordStrength(req.Password); err != nil {
		return nil, ErrWeakPassword
	}

	email := normalizeEmail(req.Email)

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		return nil, ErrEmailExists
	}

	hash, err := s.password.HashPassword(req.Password)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	s.users[email] = user
	s.mu.Unlock()

	s.logger.Info("User registered", "email", email)
	return s.issueTokens(user)
}

// Login authenticates a user by email and password.
func (s *Service) Login(req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)

	s.mu.RLock()
	user, exists := s.users[email]
	s.mu.RUnlock()

	if !exists || !s.password.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	s.mu.Lock()
	user.LastLoginAt = &now
	s.mu.Unlock()

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked.
func (s *Service) Refresh(refreshToken string) (*LoginResponse, error) {
	tokenHash := HashRefreshToken(refreshToken)

	s.mu.Lock()
	sess, ok := s.sessions[tokenHash]
	if ok {
		delete(s.sessions, tokenHash)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrSessionRevoked
	}
	if time.Now().After(sess.expiresAt) {
		return nil, ErrTokenExpired
	}

	user := s.userByID(sess.userID)
	if user == nil {
		return nil, ErrUserNotFound
	}

	return s.issueTokens(user)
}

// Logout revokes a refresh token.
func (s *Service) Logout(refreshToken string) {
	s.mu.Lock()
	delete(s.sessions, HashRefreshToken(refreshToken))
	s.mu.Unlock()
}

// ChangePassword updates a user's password after verifying the current one.
func (s *Service) ChangePassword(userID string, req ChangePasswordRequest) error {
	user := s.userByID(userID)
	if user == nil {
		return ErrUserNotFound
	}

	if !s.password.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := s.password.ValidatePasswordStrength(req.NewPassword); err != nil {
		return ErrWeakPassword
	}

	hash, err := s.password.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	user.PasswordHash = hash
	// Force re-login everywhere on password change.
	for key, sess := range s.sessions {
		if sess.userID == userID {
			delete(s.sessions, key)
		}
	}
	s.mu.Unlock()

	s.logger.Info("Password changed", "user_id", userID)
	return nil
}

// GetUser returns the public view of a user.
func (s *Service) GetUser(userID string) (*UserResponse, error) {
	user := s.userByID(userID)
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) issueTokens(user *User) (*LoginResponse, error) {
	pair, err := s.jwt.GenerateTokenPair(UserClaims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[HashRefreshToken(pair.RefreshToken)] = session{
		userID:    user.ID,
		tokenHash: HashRefreshToken(pair.RefreshToken),
		expiresAt: time.Now().Add(s.jwt.GetRefreshTokenDuration()),
	}
	s.mu.Unlock()

	return &LoginResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (s *Service) userByID(id string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ID == id {
			return user
		}
	}
	return nil
}

func toUserResponse(user *User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		IsAdmin:     user.IsAdmin,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
