package store

import (
	"context"
	"sync"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

type fakeCourses struct {
	mu      sync.Mutex
	list    func(models.CourseQuery) (models.Page[models.CourseSummary], error)
	get     func(ctx context.Context, id string) (*models.CourseDetails, error)
	toggle  func(ctx context.Context, token, id string) (models.LikeState, error)
	queries []models.CourseQuery
	tokens  []string
}

func (f *fakeCourses) List(_ context.Context, q models.CourseQuery) (models.Page[models.CourseSummary], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.list(q)
}

func (f *fakeCourses) Get(ctx context.Context, id string) (*models.CourseDetails, error) {
	return f.get(ctx, id)
}

func (f *fakeCourses) Create(context.Context, string, models.CourseRequest) (*models.CourseDetails, error) {
	return nil, shared.ErrNotImplemented
}

func (f *fakeCourses) Update(context.Context, string, string, models.CourseRequest) (*models.CourseDetails, error) {
	return nil, shared.ErrNotImplemented
}

func (f *fakeCourses) Delete(context.Context, string, string) error {
	return shared.ErrNotImplemented
}

func (f *fakeCourses) ToggleLike(ctx context.Context, token, id string) (models.LikeState, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	return f.toggle(ctx, token, id)
}

func (f *fakeCourses) Recommendations(context.Context, string) (*models.Recommendations, error) {
	return nil, shared.ErrNotImplemented
}

func (f *fakeCourses) Categories(context.Context) ([]models.Category, error) {
	return nil, shared.ErrNotImplemented
}

type fakeAuth struct {
	token    string
	err      error
	message  string
	nickname string
	codes    []models.KakaoLoginRequest
}

func (f *fakeAuth) Signup(context.Context, models.SignupRequest) (string, error) {
	return f.message, f.err
}

func (f *fakeAuth) Login(context.Context, models.LoginRequest) (string, error) {
	return f.token, f.err
}

func (f *fakeAuth) VerifyEmail(context.Context, models.VerifyEmailRequest) (string, error) {
	return f.message, f.err
}

func (f *fakeAuth) KakaoLogin(_ context.Context, req models.KakaoLoginRequest) (string, error) {
	f.codes = append(f.codes, req)
	return f.token, f.err
}

func (f *fakeAuth) SetNickname(_ context.Context, _ string, nickname string) error {
	if f.err != nil {
		return f.err
	}
	f.nickname = nickname
	return nil
}

type fakeUsers struct {
	profile *models.UserProfile
	err     error
}

func (f *fakeUsers) Profile(context.Context, string) (*models.UserProfile, error) {
	return f.profile, f.err
}

func (f *fakeUsers) UpdateProfile(_ context.Context, _ string, u models.ProfileUpdate) (*models.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.profile
	if u.Nickname != "" {
		p.Nickname = u.Nickname
	}
	if u.Bio != "" {
		p.Bio = u.Bio
	}
	return &p, nil
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
