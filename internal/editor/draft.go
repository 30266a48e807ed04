package editor

import (
	"encoding/json"
	"slices"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// CourseDraft is a course being created or edited.
type CourseDraft struct {
	ID            string
	CourseID      string // set when the draft edits a published course
	Title         string
	Summary       string
	CategoryID    string
	MajorRegion   string
	SubRegion     string
	CoverImageURL string
	Spots         *SpotList

	tags []string
}

// NewCourseDraft returns an empty draft with a fresh ID.
func NewCourseDraft() *CourseDraft {
	return &CourseDraft{ID: shared.GenerateID(), Spots: NewSpotList()}
}

// DraftFromCourse loads a published course for editing. The stored region code is mapped back onto the
// major/sub selection.
func DraftFromCourse(c *models.CourseDetails, regions *catalog.Regions) *CourseDraft {
	d := NewCourseDraft()
	d.CourseID = c.ID
	d.Title = c.Title
	d.Summary = c.Summary
	d.CategoryID = c.CategoryID
	d.CoverImageURL = c.CoverImageURL
	d.MajorRegion, d.SubRegion = splitRegion(regions, c.RegionCode)
	for _, t := range c.Tags {
		d.AddTag(t)
	}
	d.Spots.Load(c.Spots)
	return d
}

func splitRegion(regions *catalog.Regions, code string) (string, string) {
	if code == "" {
		return "", ""
	}
	if _, ok := regions.Major(code); ok {
		return code, ""
	}
	for _, m := range regions.Majors() {
		for _, c := range m.Children {
			if c.Code == code {
				return m.Code, c.Code
			}
		}
	}
	return code, ""
}

// Tags returns the tags in insertion order.
func (d *CourseDraft) Tags() []string {
	return slices.Clone(d.tags)
}

// AddTag appends tag unless it is blank or already present. It reports whether the tag was added.
func (d *CourseDraft) AddTag(tag string) bool {
	tag = shared.NormalizeTag(tag)
	if tag == "" || slices.Contains(d.tags, tag) {
		return false
	}
	d.tags = append(d.tags, tag)
	return true
}

// RemoveTag deletes tag and reports whether it was present.
func (d *CourseDraft) RemoveTag(tag string) bool {
	tag = shared.NormalizeTag(tag)
	i := slices.Index(d.tags, tag)
	if i < 0 {
		return false
	}
	d.tags = slices.Delete(d.tags, i, i+1)
	return true
}

// Request builds the create/update body. The region is resolved through regions, so an incomplete
// major/sub selection is an error here as well.
func (d *CourseDraft) Request(regions *catalog.Regions) (models.CourseRequest, error) {
	region, err := regions.Resolve(d.MajorRegion, d.SubRegion)
	if err != nil {
		return models.CourseRequest{}, err
	}

	return models.CourseRequest{
		CategoryID:      d.CategoryID,
		Title:           d.Title,
		Summary:         d.Summary,
		CoverImageURL:   d.CoverImageURL,
		RegionCode:      region.Code,
		RegionName:      region.Name,
		DurationMinutes: d.Spots.TotalStayMinutes(),
		EstimatedCost:   d.Spots.TotalCost(),
		Tags:            d.Tags(),
		Spots:           d.Spots.Spots(),
	}, nil
}

type draftPayload struct {
	ID            string        `json:"id"`
	CourseID      string        `json:"courseId,omitempty"`
	Title         string        `json:"title"`
	Summary       string        `json:"summary"`
	CategoryID    string        `json:"categoryId"`
	MajorRegion   string        `json:"majorRegion"`
	SubRegion     string        `json:"subRegion,omitempty"`
	CoverImageURL string        `json:"coverImageUrl,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Spots         []models.Spot `json:"spots"`
}

// MarshalJSON encodes the draft for local persistence.
func (d *CourseDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(draftPayload{
		ID:            d.ID,
		CourseID:      d.CourseID,
		Title:         d.Title,
		Summary:       d.Summary,
		CategoryID:    d.CategoryID,
		MajorRegion:   d.MajorRegion,
		SubRegion:     d.SubRegion,
		CoverImageURL: d.CoverImageURL,
		Tags:          d.tags,
		Spots:         d.Spots.Spots(),
	})
}

// UnmarshalJSON restores a persisted draft.
func (d *CourseDraft) UnmarshalJSON(data []byte) error {
	var p draftPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*d = CourseDraft{
		ID:            p.ID,
		CourseID:      p.CourseID,
		Title:         p.Title,
		Summary:       p.Summary,
		CategoryID:    p.CategoryID,
		MajorRegion:   p.MajorRegion,
		SubRegion:     p.SubRegion,
		CoverImageURL: p.CoverImageURL,
		Spots:         NewSpotList(p.Spots...),
	}
	for _, t := range p.Tags {
		d.AddTag(t)
	}
	return nil
}
