package models

import (
	"net/url"
	"strconv"
	"time"
)

// ReviewState is the moderation lifecycle of a published course.
type ReviewState string

const (
	ReviewDraft    ReviewState = "DRAFT"
	ReviewInReview ReviewState = "IN_REVIEW"
	ReviewApproved ReviewState = "APPROVED"
	ReviewRejected ReviewState = "REJECTED"
)

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Spot is a single stop in a course. OrderNo is 1-based and dense within its course.
type Spot struct {
	OrderNo     int      `json:"orderNo"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Lat         *float64 `json:"lat,omitempty" validate:"required"`
	Lng         *float64 `json:"lng,omitempty" validate:"required"`
	Images      []string `json:"images,omitempty"`
	StayMinutes int      `json:"stayMinutes" validate:"gte=0"`
	Price       int      `json:"price" validate:"gte=0"`
}

// Coordinate returns the spot position and whether both axes are set.
func (s Spot) Coordinate() (LatLng, bool) {
	if s.Lat == nil || s.Lng == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *s.Lat, Lng: *s.Lng}, true
}

// SetCoordinate stores p on the spot.
func (s *Spot) SetCoordinate(p LatLng) {
	lat, lng := p.Lat, p.Lng
	s.Lat, s.Lng = &lat, &lng
}

// Clone returns a deep copy of s.
func (s Spot) Clone() Spot {
	c := s
	if s.Lat != nil {
		lat := *s.Lat
		c.Lat = &lat
	}
	if s.Lng != nil {
		lng := *s.Lng
		c.Lng = &lng
	}
	if s.Images != nil {
		c.Images = append([]string(nil), s.Images...)
	}
	return c
}

// CourseSummary is a course as it appears in list and recommendation responses.
type CourseSummary struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Summary         string      `json:"summary,omitempty"`
	CoverImageURL   string      `json:"coverImageUrl,omitempty"`
	RegionName      string      `json:"regionName,omitempty"`
	DurationMinutes int         `json:"durationMinutes,omitempty"`
	EstimatedCost   int         `json:"estimatedCost,omitempty"`
	LikeCount       int         `json:"likeCount,omitempty"`
	PurchaseCount   int         `json:"purchaseCount,omitempty"`
	ReviewState     ReviewState `json:"reviewState,omitempty"`
	Lat             *float64    `json:"lat,omitempty"`
	Lng             *float64    `json:"lng,omitempty"`
}

// Coordinate returns the course anchor point when the backend supplied one.
func (c CourseSummary) Coordinate() (LatLng, bool) {
	if c.Lat == nil || c.Lng == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *c.Lat, Lng: *c.Lng}, true
}

// CourseDetails is the full course record returned by GET /api/courses/{id}.
type CourseDetails struct {
	ID                 string         `json:"id"`
	CreatorID          string         `json:"creatorId,omitempty"`
	CreatorDisplayName string         `json:"creatorDisplayName,omitempty"`
	CategoryID         string         `json:"categoryId,omitempty"`
	CategorySlug       string         `json:"categorySlug,omitempty"`
	Title              string         `json:"title"`
	Summary            string         `json:"summary,omitempty"`
	CoverImageURL      string         `json:"coverImageUrl,omitempty"`
	RegionCode         string         `json:"regionCode,omitempty"`
	RegionName         string         `json:"regionName,omitempty"`
	DurationMinutes    int            `json:"durationMinutes,omitempty"`
	EstimatedCost      int            `json:"estimatedCost,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	LikeCount          int            `json:"likeCount"`
	Liked              bool           `json:"liked,omitempty"`
	PurchaseCount      int            `json:"purchaseCount,omitempty"`
	ReviewState        ReviewState    `json:"reviewState,omitempty"`
	PublishedAt        *time.Time     `json:"publishedAt,omitempty"`
	Spots              []Spot         `json:"spots"`
}

// TotalCost sums spot prices.
func (c CourseDetails) TotalCost() int {
	total := 0
	for _, s := range c.Spots {
		total += s.Price
	}
	return total
}

// TotalStayMinutes sums spot stay durations.
func (c CourseDetails) TotalStayMinutes() int {
	total := 0
	for _, s := range c.Spots {
		total += s.StayMinutes
	}
	return total
}

// Summarize projects the detail record onto its list representation.
func (c CourseDetails) Summarize() CourseSummary {
	s := CourseSummary{
		ID:              c.ID,
		Title:           c.Title,
		Summary:         c.Summary,
		CoverImageURL:   c.CoverImageURL,
		RegionName:      c.RegionName,
		DurationMinutes: c.DurationMinutes,
		EstimatedCost:   c.EstimatedCost,
		LikeCount:       c.LikeCount,
		PurchaseCount:   c.PurchaseCount,
		ReviewState:     c.ReviewState,
	}
	if len(c.Spots) > 0 {
		s.Lat, s.Lng = c.Spots[0].Lat, c.Spots[0].Lng
	}
	return s
}

// CourseRequest is the create/update body for POST and PUT /api/courses.
type CourseRequest struct {
	CategoryID      string         `json:"categoryId"`
	Title           string         `json:"title"`
	Summary         string         `json:"summary,omitempty"`
	CoverImageURL   string         `json:"coverImageUrl,omitempty"`
	RegionCode      string         `json:"regionCode,omitempty"`
	RegionName      string         `json:"regionName,omitempty"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
	EstimatedCost   int            `json:"estimatedCost"`
	Tags            []string       `json:"tags,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Spots           []Spot         `json:"spots"`
}

// CourseQuery holds course list filters. Zero values are left out of the request.
type CourseQuery struct {
	Q          string
	CategoryID string
	Region     string
	MaxCost    int
	Sort       string
	Page       int
	Size       int
}

// Values encodes the set fields as URL query parameters.
func (q CourseQuery) Values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.CategoryID != "" {
		v.Set("categoryId", q.CategoryID)
	}
	if q.Region != "" {
		v.Set("region", q.Region)
	}
	if q.MaxCost > 0 {
		v.Set("maxCost", strconv.Itoa(q.MaxCost))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	return v
}

// Page is the Spring Data pagination envelope.
type Page[T any] struct {
	Content       []T  `json:"content"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// SinglePage wraps a bare list in a one-page envelope.
func SinglePage[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Content:       items,
		Size:          len(items),
		TotalElements: len(items),
		TotalPages:    1,
		First:         true,
		Last:          true,
	}
}

// LikeState is a viewer's like flag and the course's aggregate count.
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// Inverse returns the optimistic result of toggling s.
func (s LikeState) Inverse() LikeState {
	if s.Liked {
		return LikeState{Liked: false, LikeCount: max(s.LikeCount-1, 0)}
	}
	return LikeState{Liked: true, LikeCount: s.LikeCount + 1}
}

// Recommendations groups related courses returned for a course.
type Recommendations struct {
	RelatedByLikes []CourseSummary `json:"relatedByLikes"`
	SameCategory   []CourseSummary `json:"sameCategory"`
	SameRegion     []CourseSummary `json:"sameRegion"`
}

// Category is a course category. Hidden categories are kept out of pickers.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID string `json:"parentId,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
}

// Region is a major region with optional sub-regions.
type Region struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Children []Region `json:"children,omitempty"`
}

// HasChildren reports whether a sub-region must be chosen under r.
func (r Region) HasChildren() bool {
	return len(r.Children) > 0
}
