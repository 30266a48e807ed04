package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
)

// SessionStore persists the auth session.
type SessionStore interface {
	Load() (models.Session, error)
	Save(models.Session) error
	Clear() error
}

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// MemorySessions is a [SessionStore] that keeps the session in memory.
type MemorySessions struct {
	mu      sync.Mutex
	session models.Session
}

func (m *MemorySessions) Load() (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *MemorySessions) Save(s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

func (m *MemorySessions) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = models.Session{}
	return nil
}

// AuthStore is the authentication state of the client.
type AuthStore struct {
	mu       sync.Mutex
	auth     services.AuthAPI
	users    services.UserAPI
	sessions SessionStore
	session  models.Session
	logger   *log.Logger
}

// NewAuthStore creates an empty AuthStore. Call [AuthStore.Restore] to load a persisted session.
func NewAuthStore(auth services.AuthAPI, users services.UserAPI, sessions SessionStore, logger *log.Logger) *AuthStore {
	if sessions == nil {
		sessions = &MemorySessions{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &AuthStore{auth: auth, users: users, sessions: sessions, logger: logger}
}

// DecodeClaims decodes the payload segment of a compact token without verifying its signature.
func DecodeClaims(token string) (*models.Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("%w: expected three segments", shared.ErrInvalidToken)
	}

	claims := &models.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidToken, err)
	}
	return claims, nil
}

// Restore loads the persisted session. A stored token that no longer decodes clears the session.
func (s *AuthStore) Restore() error {
	session, err := s.sessions.Load()
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session.Token != "" && session.Claims == nil {
		claims, err := DecodeClaims(session.Token)
		if err != nil {
			s.session = models.Session{}
			return errors.Join(err, s.persist())
		}
		session.Claims = claims
	}
	s.session = session
	return nil
}

// Snapshot returns a copy of the current session.
func (s *AuthStore) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := models.Session{Token: s.session.Token}
	if s.session.Claims != nil {
		c := *s.session.Claims
		out.Claims = &c
	}
	if s.session.Profile != nil {
		p := *s.session.Profile
		out.Profile = &p
	}
	return out
}

// Token returns the bearer token, or "" when signed out.
func (s *AuthStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

// SetToken stores token and its decoded claims and drops any cached profile.
// An empty token signs out; a token that cannot be decoded clears all auth state.
func (s *AuthStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setToken(token)
}

func (s *AuthStore) setToken(token string) error {
	if token == "" {
		s.session = models.Session{}
		return s.persist()
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		s.logger.Warn("discarding undecodable token", "error", err)
		s.session = models.Session{}
		return errors.Join(err, s.persist())
	}

	s.session = models.Session{Token: token, Claims: claims}
	return s.persist()
}

func (s *AuthStore) persist() error {
	if !s.session.Authenticated() {
		if err := s.sessions.Clear(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	}
	if err := s.sessions.Save(s.session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and stores it.
func (s *AuthStore) Login(ctx context.Context, req models.LoginRequest) error {
	token, err := s.auth.Login(ctx, req)
	if err != nil {
		return err
	}
	return s.SetToken(token)
}

// Signup registers an account and returns the server message. It does not sign in.
func (s *AuthStore) Signup(ctx context.Context, req models.SignupRequest) (string, error) {
	return s.auth.Signup(ctx, req)
}

// VerifyEmail confirms the code mailed after signup.
func (s *AuthStore) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	return s.auth.VerifyEmail(ctx, models.VerifyEmailRequest{Email: email, Code: code})
}

// KakaoLogin exchanges a Kakao authorization code through the backend and stores the issued token.
func (s *AuthStore) KakaoLogin(ctx context.Context, code, redirectURI string) error {
	if code == "" {
		return fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	token, err := s.auth.KakaoLogin(ctx, models.KakaoLoginRequest{Code: code, RedirectURI: redirectURI})
	if err != nil {
		return err
	}
	return s.SetToken(token)
}

// SetNickname completes first-login setup and updates the cached identity.
func (s *AuthStore) SetNickname(ctx context.Context, nickname string) error {
	token := s.Token()
	if token == "" {
		return shared.ErrNotAuthenticated
	}

	if err := s.auth.SetNickname(ctx, token, nickname); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Token != token {
		return nil
	}
	if s.session.Claims != nil {
		s.session.Claims.Nickname = nickname
	}
	if s.session.Profile != nil {
		s.session.Profile.Nickname = nickname
	}
	return s.persist()
}

// Profile fetches and caches the signed-in user's profile. A failed fetch clears all auth state.
func (s *AuthStore) Profile(ctx context.Context) (*models.UserProfile, error) {
	token := s.Token()
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	profile, err := s.users.Profile(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Token != token {
		return profile, err
	}
	if err != nil {
		s.logger.Warn("profile fetch failed, signing out", "error", err)
		s.session = models.Session{}
		return nil, errors.Join(err, s.persist())
	}

	s.session.Profile = profile
	return profile, s.persist()
}

// UpdateProfile patches the profile and caches the result.
func (s *AuthStore) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	token := s.Token()
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}

	profile, err := s.users.UpdateProfile(ctx, token, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Token == token {
		s.session.Profile = profile
		if s.session.Claims != nil && profile.Nickname != "" {
			s.session.Claims.Nickname = profile.Nickname
		}
		if err := s.persist(); err != nil {
			return profile, err
		}
	}
	return profile, nil
}

// Logout clears the token, claims and profile.
func (s *AuthStore) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.Session{}
	return s.persist()
}
