package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// AuthService talks to the /api/auth endpoints.
type AuthService struct {
	api *APIService
}

// NewAuthService creates an AuthService on top of api.
func NewAuthService(api *APIService) *AuthService {
	return &AuthService{api: api}
}

// Signup registers an account and returns the server's message. It does not log in.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (string, error) {
	resp, err := s.api.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/signup", JSON: req})
	if err != nil {
		return "", err
	}
	return messageOf(resp), nil
}

// Login exchanges credentials for a bearer token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	return s.token(ctx, "/api/auth/login", req)
}

// VerifyEmail confirms a signup code.
func (s *AuthService) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) (string, error) {
	resp, err := s.api.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/verify", JSON: req})
	if err != nil {
		return "", err
	}
	return messageOf(resp), nil
}

// KakaoLogin exchanges a Kakao authorization code for a backend token.
func (s *AuthService) KakaoLogin(ctx context.Context, req models.KakaoLoginRequest) (string, error) {
	if req.Code == "" {
		return "", fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}
	return s.token(ctx, "/api/auth/login/kakao", req)
}

// SetNickname sets the nickname for a freshly created OAuth account.
func (s *AuthService) SetNickname(ctx context.Context, token, nickname string) error {
	if token == "" {
		return shared.ErrNotAuthenticated
	}
	_, err := s.api.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/nickname",
		JSON:   models.NicknameRequest{Nickname: nickname},
		Token:  token,
	})
	return err
}

func (s *AuthService) token(ctx context.Context, path string, body any) (string, error) {
	var tr models.TokenResponse
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodPost, Path: path, JSON: body}, &tr); err != nil {
		return "", err
	}
	if tr.Token == "" {
		return "", fmt.Errorf("%w: response did not include a token", shared.ErrAuthFailed)
	}
	return tr.Token, nil
}

// messageOf returns the {message} field of a JSON body, or the raw text.
func messageOf(resp *APIResponse) string {
	if m, ok := resp.JSONData.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok {
			return msg
		}
	}
	if s, ok := resp.JSONData.(string); ok {
		return s
	}
	if !resp.IsJSON {
		return resp.Text()
	}
	return ""
}

// UserService talks to the /api/users/me endpoints.
type UserService struct {
	api *APIService
}

// NewUserService creates a UserService on top of api.
func NewUserService(api *APIService) *UserService {
	return &UserService{api: api}
}

// Profile fetches the signed-in user's profile.
func (s *UserService) Profile(ctx context.Context, token string) (*models.UserProfile, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var p models.UserProfile
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: "/api/users/me", Token: token}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile patches the signed-in user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, token string, update models.ProfileUpdate) (*models.UserProfile, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var p models.UserProfile
	r := Request{Method: http.MethodPatch, Path: "/api/users/me", JSON: update, Token: token}
	if err := s.api.DoJSON(ctx, r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FileService uploads files to /api/files/upload.
type FileService struct {
	api *APIService
}

// NewFileService creates a FileService on top of api.
func NewFileService(api *APIService) *FileService {
	return &FileService{api: api}
}

// Upload sends body as multipart form data and returns the stored file's URL.
func (s *FileService) Upload(ctx context.Context, token string, body MultipartBody) (string, error) {
	if token == "" {
		return "", shared.ErrNotAuthenticated
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", shared.ErrInvalidInput)
	}

	var out models.UploadResponse
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodPost, Path: "/api/files/upload", Form: &body, Token: token}, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("%w: upload response missing url", shared.ErrAPIRequest)
	}
	return out.URL, nil
}
