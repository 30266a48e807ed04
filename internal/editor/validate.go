package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/go-playground/validator/v10"
)

// ValidationError lists every problem that blocks a submit.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "course is not ready: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return shared.ErrValidation }

// submission mirrors the draft fields that carry struct-tag rules.
type submission struct {
	Title         string `validate:"required"`
	Summary       string `validate:"required"`
	CategoryID    string `validate:"required"`
	CoverImageURL string `validate:"required"`
}

var fieldLabels = map[string]string{
	"Title":         "title",
	"Summary":       "summary",
	"CategoryID":    "category",
	"CoverImageURL": "cover image",
	"Lat":           "coordinate",
	"Lng":           "coordinate",
	"Price":         "price",
	"StayMinutes":   "stay minutes",
}

// Validator checks a draft before it is sent.
type Validator struct {
	validate *validator.Validate
	regions  *catalog.Regions
	minSpots int
	maxTitle int
}

// NewValidator builds a Validator. Non-positive limits fall back to 2 spots and 20 title characters.
func NewValidator(regions *catalog.Regions, cfg shared.EditorConfig) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		regions:  regions,
		minSpots: cfg.MinSpots,
		maxTitle: cfg.MaxTitleLength,
	}
	if v.minSpots <= 0 {
		v.minSpots = 2
	}
	if v.maxTitle <= 0 {
		v.maxTitle = 20
	}
	return v
}

func describe(fe validator.FieldError, prefix string) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = strings.ToLower(fe.Field())
	}

	switch fe.Tag() {
	case "required":
		return prefix + label + " is required"
	case "gte":
		return prefix + label + " cannot be negative"
	case "max":
		return fmt.Sprintf("%s%s must be at most %s characters", prefix, label, fe.Param())
	default:
		return fmt.Sprintf("%s%s failed %s", prefix, label, fe.Tag())
	}
}

func (v *Validator) collect(problems []string, err error, prefix string) []string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		if err != nil {
			problems = append(problems, prefix+err.Error())
		}
		return problems
	}

	seen := map[string]bool{}
	for _, fe := range errs {
		msg := describe(fe, prefix)
		if !seen[msg] {
			seen[msg] = true
			problems = append(problems, msg)
		}
	}
	return problems
}

// Validate returns a [*ValidationError] listing every violation, or nil.
func (v *Validator) Validate(d *CourseDraft) error {
	var problems []string

	problems = v.collect(problems, v.validate.Struct(submission{
		Title:         strings.TrimSpace(d.Title),
		Summary:       strings.TrimSpace(d.Summary),
		CategoryID:    d.CategoryID,
		CoverImageURL: d.CoverImageURL,
	}), "")

	if err := v.validate.Var(d.Title, fmt.Sprintf("max=%d", v.maxTitle)); err != nil {
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", v.maxTitle))
	}

	if _, err := v.regions.Resolve(d.MajorRegion, d.SubRegion); err != nil {
		switch {
		case errors.Is(err, shared.ErrSubRegionRequired):
			problems = append(problems, "choose a sub-region for the selected region")
		default:
			problems = append(problems, "region is required")
		}
	}

	spots := d.Spots.Spots()
	if len(spots) < v.minSpots {
		problems = append(problems, fmt.Sprintf("add at least %d spots", v.minSpots))
	}
	for _, s := range spots {
		s.Title = strings.TrimSpace(s.Title)
		problems = v.collect(problems, v.validate.Struct(s), fmt.Sprintf("spot %d: ", s.OrderNo))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Prepare validates d and builds the request to send. The request shares no memory with d, so it can be
// published while d keeps changing.
func (v *Validator) Prepare(d *CourseDraft) (models.CourseRequest, error) {
	if err := v.Validate(d); err != nil {
		return models.CourseRequest{}, err
	}
	return d.Request(v.regions)
}

// Publish creates the course, or updates courseID when it is set.
//
// The backend may answer an update with 204 or an empty body; the course is then read back, and when that
// fails too the result is built from req.
func Publish(ctx context.Context, courses services.CourseAPI, token, courseID string, req models.CourseRequest) (*models.CourseDetails, error) {
	if courseID == "" {
		return courses.Create(ctx, token, req)
	}

	course, err := courses.Update(ctx, token, courseID, req)
	if err != nil {
		return nil, err
	}
	if course != nil && course.ID != "" {
		return course, nil
	}
	if course, err = courses.Get(ctx, courseID); err == nil && course != nil {
		return course, nil
	}
	return &models.CourseDetails{
		ID:              courseID,
		Title:           req.Title,
		Summary:         req.Summary,
		CategoryID:      req.CategoryID,
		CoverImageURL:   req.CoverImageURL,
		RegionCode:      req.RegionCode,
		RegionName:      req.RegionName,
		DurationMinutes: req.DurationMinutes,
		EstimatedCost:   req.EstimatedCost,
		Tags:            req.Tags,
		Spots:           req.Spots,
	}, nil
}

// Submit validates d and, only when it passes, creates or updates the course.
func (v *Validator) Submit(ctx context.Context, courses services.CourseAPI, token string, d *CourseDraft) (*models.CourseDetails, error) {
	req, err := v.Prepare(d)
	if err != nil {
		return nil, err
	}
	return Publish(ctx, courses, token, d.CourseID, req)
}
