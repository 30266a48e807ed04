package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// CourseService talks to the /api/courses and /api/categories endpoints.
type CourseService struct {
	api *APIService
}

// NewCourseService creates a CourseService on top of api.
func NewCourseService(api *APIService) *CourseService {
	return &CourseService{api: api}
}

func coursePath(id string, rest ...string) string {
	p := "/api/courses/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// List fetches a page of courses. The backend may answer with a bare array or a page object; both are
// returned as a [models.Page].
func (s *CourseService) List(ctx context.Context, q models.CourseQuery) (models.Page[models.CourseSummary], error) {
	resp, err := s.api.Do(ctx, Request{Method: http.MethodGet, Path: "/api/courses", Query: q.Values()})
	if err != nil {
		return models.Page[models.CourseSummary]{}, err
	}
	return decodeCoursePage(resp.Body)
}

func decodeCoursePage(body []byte) (models.Page[models.CourseSummary], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.SinglePage[models.CourseSummary](nil), nil
	}

	if trimmed[0] == '[' {
		var items []models.CourseSummary
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return models.Page[models.CourseSummary]{}, fmt.Errorf("%w: failed to decode course list: %w", shared.ErrAPIRequest, err)
		}
		return models.SinglePage(items), nil
	}

	var page models.Page[models.CourseSummary]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return page, fmt.Errorf("%w: failed to decode course page: %w", shared.ErrAPIRequest, err)
	}
	if page.Content == nil {
		page.Content = []models.CourseSummary{}
	}
	return page, nil
}

// Get fetches a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: course id", shared.ErrMissingArgument)
	}

	var details models.CourseDetails
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: coursePath(id)}, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Create publishes a new course.
func (s *CourseService) Create(ctx context.Context, token string, req models.CourseRequest) (*models.CourseDetails, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var details models.CourseDetails
	r := Request{Method: http.MethodPost, Path: "/api/courses", JSON: req, Token: token}
	if err := s.api.DoJSON(ctx, r, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Update replaces a course. The backend may answer 204, in which case the returned details are nil.
func (s *CourseService) Update(ctx context.Context, token, id string, req models.CourseRequest) (*models.CourseDetails, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	resp, err := s.api.Do(ctx, Request{Method: http.MethodPut, Path: coursePath(id), JSON: req, Token: token})
	if err != nil {
		return nil, err
	}
	if !resp.IsJSON {
		return nil, nil
	}

	var details models.CourseDetails
	if err := json.Unmarshal(resp.Body, &details); err != nil {
		return nil, fmt.Errorf("%w: failed to decode course: %w", shared.ErrAPIRequest, err)
	}
	return &details, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, token, id string) error {
	if token == "" {
		return shared.ErrNotAuthenticated
	}
	_, err := s.api.Do(ctx, Request{Method: http.MethodDelete, Path: coursePath(id), Token: token})
	return err
}

// ToggleLike flips the viewer's like and returns the server-authoritative state.
func (s *CourseService) ToggleLike(ctx context.Context, token, id string) (models.LikeState, error) {
	var state models.LikeState
	if token == "" {
		return state, shared.ErrNotAuthenticated
	}

	err := s.api.DoJSON(ctx, Request{Method: http.MethodPost, Path: coursePath(id, "likes", "toggle"), Token: token}, &state)
	return state, err
}

// Recommendations fetches courses related to id.
func (s *CourseService) Recommendations(ctx context.Context, id string) (*models.Recommendations, error) {
	var recs models.Recommendations
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: coursePath(id, "recommendations")}, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

// Categories fetches the flat category list.
func (s *CourseService) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.api.DoJSON(ctx, Request{Method: http.MethodGet, Path: "/api/categories"}, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}
