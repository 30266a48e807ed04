// package services defines typed clients for the course backend's REST endpoints
package services

import (
	"context"

	"github.com/desertthunder/coursemap/internal/models"
)

// CourseAPI is the course surface consumed by the stores and tasks.
type CourseAPI interface {
	List(ctx context.Context, q models.CourseQuery) (models.Page[models.CourseSummary], error)
	Get(ctx context.Context, id string) (*models.CourseDetails, error)
	Create(ctx context.Context, token string, req models.CourseRequest) (*models.CourseDetails, error)
	Update(ctx context.Context, token, id string, req models.CourseRequest) (*models.CourseDetails, error)
	Delete(ctx context.Context, token, id string) error
	ToggleLike(ctx context.Context, token, id string) (models.LikeState, error)
	Recommendations(ctx context.Context, id string) (*models.Recommendations, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// AuthAPI is the authentication surface consumed by the auth store.
type AuthAPI interface {
	Signup(ctx context.Context, req models.SignupRequest) (string, error)
	Login(ctx context.Context, req models.LoginRequest) (string, error)
	VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) (string, error)
	KakaoLogin(ctx context.Context, req models.KakaoLoginRequest) (string, error)
	SetNickname(ctx context.Context, token, nickname string) error
}

// UserAPI is the profile surface consumed by the auth store.
type UserAPI interface {
	Profile(ctx context.Context, token string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, token string, update models.ProfileUpdate) (*models.UserProfile, error)
}

// FileAPI uploads media and returns its public URL.
type FileAPI interface {
	Upload(ctx context.Context, token string, body MultipartBody) (string, error)
}

var (
	_ CourseAPI = (*CourseService)(nil)
	_ AuthAPI   = (*AuthService)(nil)
	_ UserAPI   = (*UserService)(nil)
	_ FileAPI   = (*FileService)(nil)
)
