package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
)

// RunRecorder stores export history. [repositories.ExportRunRepository] implements it.
type RunRecorder interface {
	Start(run *models.ExportRun) error
	Finish(run *models.ExportRun) error
}

// CourseEngine runs bulk course operations against the backend.
type CourseEngine struct {
	courses services.CourseAPI
	runs    RunRecorder
	logger  *log.Logger
}

// NewCourseEngine creates an engine. runs may be nil to skip export history.
func NewCourseEngine(courses services.CourseAPI, runs RunRecorder, logger *log.Logger) *CourseEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &CourseEngine{courses: courses, runs: runs, logger: logger}
}

// CollectOpts bounds a [CourseEngine.CollectAll] walk.
type CollectOpts struct {
	PageSize  int     // Page size requested from the backend (default: 20)
	MaxPages  int     // Stop after this many pages; 0 means no limit
	RateLimit float64 // Page requests per second (default: 5)
}

// CollectAll walks the course list from the query's page until the last page.
func (e *CourseEngine) CollectAll(ctx context.Context, prog chan<- ProgressUpdate, q models.CourseQuery, opts CollectOpts) ([]models.CourseSummary, error) {
	if e.courses == nil {
		return nil, fmt.Errorf("%w: course service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	q.Size = opts.PageSize

	var all []models.CourseSummary
	for fetched := 0; opts.MaxPages == 0 || fetched < opts.MaxPages; fetched++ {
		if err := limiter.Wait(ctx); err != nil {
			return all, err
		}

		sendProgress(prog, fetchPageUpdate(q.Page, len(all)))
		page, err := e.courses.List(ctx, q)
		if err != nil {
			return all, fmt.Errorf("failed to fetch page %d: %w", q.Page, err)
		}

		all = append(all, page.Content...)
		if page.Last || len(page.Content) == 0 {
			break
		}
		q.Page++
	}

	e.logger.Debug("collected courses", "count", len(all))
	return all, nil
}
