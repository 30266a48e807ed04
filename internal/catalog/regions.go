// Package catalog holds the region hierarchy and category filtering used by course pickers.
package catalog

import (
	"fmt"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// Regions is an ordered two-level region hierarchy.
type Regions struct {
	majors []models.Region
	index  map[string]int
}

// NewRegions indexes majors by code. Order is preserved for display.
func NewRegions(majors []models.Region) *Regions {
	r := &Regions{majors: majors, index: make(map[string]int, len(majors))}
	for i, m := range majors {
		r.index[m.Code] = i
	}
	return r
}

// DefaultRegions returns the built-in Korean province and metropolitan city hierarchy.
func DefaultRegions() *Regions {
	return NewRegions(defaultRegions)
}

// Majors returns the top-level regions.
func (r *Regions) Majors() []models.Region {
	return append([]models.Region(nil), r.majors...)
}

// Major looks up a top-level region by code.
func (r *Regions) Major(code string) (models.Region, bool) {
	i, ok := r.index[code]
	if !ok {
		return models.Region{}, false
	}
	return r.majors[i], true
}

// Children returns the sub-regions of major, or nil when it has none or is unknown.
func (r *Regions) Children(major string) []models.Region {
	m, ok := r.Major(major)
	if !ok {
		return nil
	}
	return m.Children
}

// Resolve returns the region a course is filed under: the sub-region when one is chosen, otherwise the major
// region. A major region that has children requires a valid sub-region.
func (r *Regions) Resolve(major, sub string) (models.Region, error) {
	if major == "" {
		return models.Region{}, fmt.Errorf("%w: no region selected", shared.ErrUnknownRegion)
	}

	m, ok := r.Major(major)
	if !ok {
		return models.Region{}, fmt.Errorf("%w: %s", shared.ErrUnknownRegion, major)
	}

	if !m.HasChildren() {
		if sub != "" {
			return models.Region{}, fmt.Errorf("%w: %s has no sub-regions", shared.ErrUnknownRegion, m.Name)
		}
		return models.Region{Code: m.Code, Name: m.Name}, nil
	}

	if sub == "" {
		return models.Region{}, fmt.Errorf("%w: choose a district of %s", shared.ErrSubRegionRequired, m.Name)
	}
	for _, c := range m.Children {
		if c.Code == sub {
			return models.Region{Code: c.Code, Name: m.Name + " " + c.Name}, nil
		}
	}
	return models.Region{}, fmt.Errorf("%w: %s is not in %s", shared.ErrSubRegionRequired, sub, m.Name)
}

// Selection is the cascading major/sub region picker state.
type Selection struct {
	regions *Regions
	major   string
	sub     string
}

// NewSelection returns an empty selection over regions.
func NewSelection(regions *Regions) *Selection {
	return &Selection{regions: regions}
}

// Major returns the selected major region code.
func (s *Selection) Major() string { return s.major }

// Sub returns the selected sub-region code.
func (s *Selection) Sub() string { return s.sub }

// SelectMajor chooses a major region. Changing it clears the sub-region.
func (s *Selection) SelectMajor(code string) error {
	if code != "" {
		if _, ok := s.regions.Major(code); !ok {
			return fmt.Errorf("%w: %s", shared.ErrUnknownRegion, code)
		}
	}
	if code != s.major {
		s.sub = ""
	}
	s.major = code
	return nil
}

// SelectSub chooses a sub-region of the current major region.
func (s *Selection) SelectSub(code string) error {
	if code == "" {
		s.sub = ""
		return nil
	}
	for _, c := range s.regions.Children(s.major) {
		if c.Code == code {
			s.sub = code
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not under %s", shared.ErrUnknownRegion, code, s.major)
}

// Options returns the choices for the sub-region picker.
func (s *Selection) Options() []models.Region {
	return s.regions.Children(s.major)
}

// NeedsSub reports whether the selection is incomplete because the major region has children.
func (s *Selection) NeedsSub() bool {
	return len(s.Options()) > 0 && s.sub == ""
}

// Resolve applies [Regions.Resolve] to the current selection.
func (s *Selection) Resolve() (models.Region, error) {
	return s.regions.Resolve(s.major, s.sub)
}
