package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
)

// LikeTransition is the state of the latest like toggle for a course.
type LikeTransition int

const (
	LikeIdle LikeTransition = iota
	LikePending
	LikeCommitted
	LikeRolledBack
)

func (t LikeTransition) String() string {
	switch t {
	case LikePending:
		return "pending"
	case LikeCommitted:
		return "committed"
	case LikeRolledBack:
		return "rolled-back"
	default:
		return "idle"
	}
}

type likeEntry struct {
	state      models.LikeState
	transition LikeTransition
	seq        uint64
}

// CourseStore holds the course list, the current detail and like state.
type CourseStore struct {
	mu      sync.Mutex
	courses services.CourseAPI
	tokens  TokenSource
	logger  *log.Logger

	query    models.CourseQuery
	page     models.Page[models.CourseSummary]
	loading  bool
	errorMsg string

	detail    *models.CourseDetails
	detailErr error
	detailSeq uint64

	likes map[string]*likeEntry
}

// NewCourseStore creates an empty CourseStore. tokens may be nil for anonymous browsing.
func NewCourseStore(courses services.CourseAPI, tokens TokenSource, logger *log.Logger) *CourseStore {
	if logger == nil {
		logger = log.Default()
	}
	return &CourseStore{
		courses: courses,
		tokens:  tokens,
		logger:  logger,
		page:    models.SinglePage[models.CourseSummary](nil),
		likes:   make(map[string]*likeEntry),
	}
}

// FetchCourses loads a page of courses. On failure the error message is recorded and the
// previous page is left in place.
func (s *CourseStore) FetchCourses(ctx context.Context, q models.CourseQuery) (models.Page[models.CourseSummary], error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	page, err := s.courses.List(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if err != nil {
		s.errorMsg = err.Error()
		return s.page, err
	}

	s.query, s.page, s.errorMsg = q, page, ""
	return page, nil
}

// Courses returns the current page and the last list error message.
func (s *CourseStore) Courses() (models.Page[models.CourseSummary], string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.page
	page.Content = append([]models.CourseSummary(nil), s.page.Content...)
	return page, s.errorMsg
}

// Loading reports whether a list fetch is outstanding.
func (s *CourseStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Query returns the filters of the current page.
func (s *CourseStore) Query() models.CourseQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// FetchCourseDetails loads a course into the detail slot.
//
// Only the most recently requested fetch may write the slot. A response for an older request
// is dropped and reported as [shared.ErrStaleResponse].
func (s *CourseStore) FetchCourseDetails(ctx context.Context, id string) (*models.CourseDetails, error) {
	s.mu.Lock()
	s.detailSeq++
	seq := s.detailSeq
	s.mu.Unlock()

	details, err := s.courses.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.detailSeq {
		s.logger.Debug("dropping stale course detail", "id", id, "seq", seq, "latest", s.detailSeq)
		return nil, fmt.Errorf("%w: course %s", shared.ErrStaleResponse, id)
	}
	if err != nil {
		s.detail, s.detailErr = nil, err
		return nil, err
	}

	entry := s.like(details.ID)
	if entry.transition != LikePending {
		entry.state = models.LikeState{Liked: details.Liked, LikeCount: details.LikeCount}
	} else {
		details.Liked, details.LikeCount = entry.state.Liked, entry.state.LikeCount
	}

	s.detail, s.detailErr = details, nil
	return details, nil
}

// Detail returns the current detail and the error of the fetch that last wrote the slot.
func (s *CourseStore) Detail() (*models.CourseDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail, s.detailErr
}

// ClearCourseDetails empties the detail slot and invalidates fetches still in flight.
func (s *CourseStore) ClearCourseDetails() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detailSeq++
	s.detail, s.detailErr = nil, nil
}

func (s *CourseStore) like(id string) *likeEntry {
	entry, ok := s.likes[id]
	if !ok {
		entry = &likeEntry{}
		s.likes[id] = entry
	}
	return entry
}

// Like returns the local like state of a course.
func (s *CourseStore) Like(id string) models.LikeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.likes[id]; ok {
		return entry.state
	}
	return models.LikeState{}
}

// Transition returns the state of the latest toggle for a course.
func (s *CourseStore) Transition(id string) LikeTransition {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.likes[id]; ok {
		return entry.transition
	}
	return LikeIdle
}

// SeedLike initializes like state, e.g. from a list row. Pending toggles are not overwritten.
func (s *CourseStore) SeedLike(id string, state models.LikeState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.like(id)
	if entry.transition == LikePending {
		return
	}
	entry.state = state
}

// apply mirrors a like state onto the detail slot and list rows of the course.
func (s *CourseStore) apply(id string, state models.LikeState) {
	if s.detail != nil && s.detail.ID == id {
		s.detail.Liked, s.detail.LikeCount = state.Liked, state.LikeCount
	}
	for i := range s.page.Content {
		if s.page.Content[i].ID == id {
			s.page.Content[i].LikeCount = state.LikeCount
		}
	}
}

// ToggleLike flips the like state of a course optimistically, then asks the backend.
//
// Success replaces the local state with the server's {liked, likeCount}; failure restores the state
// from before this toggle. When a newer toggle for the same course was issued meanwhile, the response
// is ignored and [shared.ErrStaleResponse] is returned with the current state.
func (s *CourseStore) ToggleLike(ctx context.Context, id string) (models.LikeState, error) {
	token := ""
	if s.tokens != nil {
		token = s.tokens.Token()
	}
	if token == "" {
		return s.Like(id), shared.ErrNotAuthenticated
	}

	s.mu.Lock()
	entry := s.like(id)
	snapshot := entry.state
	entry.state = snapshot.Inverse()
	entry.transition = LikePending
	entry.seq++
	seq := entry.seq
	s.apply(id, entry.state)
	s.mu.Unlock()

	result, err := s.courses.ToggleLike(ctx, token, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.seq != seq {
		s.logger.Debug("ignoring superseded like response", "id", id, "seq", seq, "latest", entry.seq)
		return entry.state, fmt.Errorf("%w: like toggle for course %s", shared.ErrStaleResponse, id)
	}

	if err != nil {
		entry.state = snapshot
		entry.transition = LikeRolledBack
		s.apply(id, snapshot)
		return snapshot, err
	}

	entry.state = result
	entry.transition = LikeCommitted
	s.apply(id, result)
	return result, nil
}
