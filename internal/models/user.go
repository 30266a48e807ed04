package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SignupRequest is the body for POST /api/auth/signup.
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Nickname        string `json:"nickname" validate:"required,max=20"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest confirms the code mailed after signup.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// KakaoLoginRequest exchanges a Kakao authorization code for a backend token.
type KakaoLoginRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri,omitempty"`
}

// NicknameRequest is the body for POST /auth/nickname.
type NicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,max=20"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the generic {message} body.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse is returned by the file upload endpoint.
type UploadResponse struct {
	URL string `json:"url"`
}

// UserProfile is the signed-in user's profile.
type UserProfile struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"displayName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	CourseCount int    `json:"courseCount"`
	LikeCount   int    `json:"likeCount"`
}

// ProfileUpdate is the PATCH /api/users/me body. Empty fields are not sent.
type ProfileUpdate struct {
	Nickname    string `json:"nickname,omitempty" validate:"omitempty,max=20"`
	DisplayName string `json:"displayName,omitempty"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=200"`
	AvatarURL   string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p == ProfileUpdate{}
}

// Claims are the display claims decoded from the backend's access token.
type Claims struct {
	Email    string           `json:"email,omitempty"`
	Nickname string           `json:"nickname,omitempty"`
	Roles    jwt.ClaimStrings `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether role is among the claimed roles.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Session is the persisted authentication state.
type Session struct {
	Token   string       `json:"token,omitempty"`
	Claims  *Claims      `json:"claims,omitempty"`
	Profile *UserProfile `json:"profile,omitempty"`
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
