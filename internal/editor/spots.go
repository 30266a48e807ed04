// Package editor implements the course spot editor and submit validation.
//
// A [SpotList] keeps spots in display order with OrderNo always equal to 1-based position. Every mutation
// renumbers, so there are never gaps or duplicates.
package editor

import (
	"fmt"
	"slices"
	"sort"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// SpotList is an ordered list of spot drafts plus the single spot currently open in the editor.
type SpotList struct {
	spots []models.Spot

	open    bool
	editing int // order number being edited; 0 while adding
	draft   models.Spot
}

// NewSpotList returns a list seeded with spots, ordered by their existing order numbers.
func NewSpotList(spots ...models.Spot) *SpotList {
	l := &SpotList{}
	l.Load(spots)
	return l
}

// Load replaces the list, sorting by OrderNo and renumbering densely. Any open edit is discarded.
func (l *SpotList) Load(spots []models.Spot) {
	l.spots = make([]models.Spot, len(spots))
	for i, s := range spots {
		l.spots[i] = s.Clone()
	}
	sort.SliceStable(l.spots, func(i, j int) bool { return l.spots[i].OrderNo < l.spots[j].OrderNo })
	l.renumber()
	l.Cancel()
}

func (l *SpotList) renumber() {
	for i := range l.spots {
		l.spots[i].OrderNo = i + 1
	}
}

func (l *SpotList) indexOf(orderNo int) (int, error) {
	if orderNo < 1 || orderNo > len(l.spots) {
		return -1, fmt.Errorf("%w: #%d", shared.ErrSpotNotFound, orderNo)
	}
	return orderNo - 1, nil
}

// Len returns the number of spots.
func (l *SpotList) Len() int { return len(l.spots) }

// Spots returns a copy of the spots in order.
func (l *SpotList) Spots() []models.Spot {
	out := make([]models.Spot, len(l.spots))
	for i, s := range l.spots {
		out[i] = s.Clone()
	}
	return out
}

// Get returns a copy of the spot at orderNo.
func (l *SpotList) Get(orderNo int) (models.Spot, error) {
	i, err := l.indexOf(orderNo)
	if err != nil {
		return models.Spot{}, err
	}
	return l.spots[i].Clone(), nil
}

// Add appends s with OrderNo = Len()+1 and returns the stored spot.
func (l *SpotList) Add(s models.Spot) models.Spot {
	s = s.Clone()
	s.OrderNo = len(l.spots) + 1
	l.spots = append(l.spots, s)
	return s.Clone()
}

// AddAt appends an untitled spot at p, the map-click flow.
func (l *SpotList) AddAt(p models.LatLng) models.Spot {
	var s models.Spot
	s.SetCoordinate(p)
	return l.Add(s)
}

// Delete removes the spot at orderNo and renumbers the rest. Deleting the spot under edit closes the editor.
func (l *SpotList) Delete(orderNo int) error {
	i, err := l.indexOf(orderNo)
	if err != nil {
		return err
	}

	l.spots = slices.Delete(l.spots, i, i+1)
	l.renumber()

	if l.open && l.editing != 0 {
		switch {
		case l.editing == orderNo:
			l.Cancel()
		case l.editing > orderNo:
			l.editing--
		}
	}
	return nil
}

// MoveUp swaps the spot with its predecessor. Moving the first spot is a no-op.
func (l *SpotList) MoveUp(orderNo int) error {
	i, err := l.indexOf(orderNo)
	if err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	l.swap(i, i-1)
	return nil
}

// MoveDown swaps the spot with its successor. Moving the last spot is a no-op.
func (l *SpotList) MoveDown(orderNo int) error {
	i, err := l.indexOf(orderNo)
	if err != nil {
		return err
	}
	if i == len(l.spots)-1 {
		return nil
	}
	l.swap(i, i+1)
	return nil
}

func (l *SpotList) swap(i, j int) {
	l.spots[i], l.spots[j] = l.spots[j], l.spots[i]
	l.renumber()

	if l.open && l.editing != 0 {
		switch l.editing {
		case i + 1:
			l.editing = j + 1
		case j + 1:
			l.editing = i + 1
		}
	}
}

// SetCoordinate moves the spot at orderNo, the marker drag-end flow.
func (l *SpotList) SetCoordinate(orderNo int, p models.LatLng) error {
	i, err := l.indexOf(orderNo)
	if err != nil {
		return err
	}
	l.spots[i].SetCoordinate(p)
	return nil
}

// BeginEdit opens the editor on an existing spot and returns its fields.
func (l *SpotList) BeginEdit(orderNo int) (models.Spot, error) {
	i, err := l.indexOf(orderNo)
	if err != nil {
		return models.Spot{}, err
	}
	l.open, l.editing, l.draft = true, orderNo, l.spots[i].Clone()
	return l.draft.Clone(), nil
}

// BeginAdd opens the editor for a new spot, optionally pre-filled with a coordinate.
func (l *SpotList) BeginAdd(at *models.LatLng) models.Spot {
	l.open, l.editing, l.draft = true, 0, models.Spot{}
	if at != nil {
		l.draft.SetCoordinate(*at)
	}
	return l.draft.Clone()
}

// Editing reports the open editor state. orderNo is 0 when adding.
func (l *SpotList) Editing() (draft models.Spot, orderNo int, open bool) {
	return l.draft.Clone(), l.editing, l.open
}

// Save commits s from the open editor. An edit replaces the spot with the edited order number in place; an
// add appends. The editor is closed afterwards.
func (l *SpotList) Save(s models.Spot) (models.Spot, error) {
	if !l.open {
		return models.Spot{}, fmt.Errorf("%w: no spot is being edited", shared.ErrInvalidInput)
	}

	defer l.Cancel()
	if l.editing == 0 {
		return l.Add(s), nil
	}

	i, err := l.indexOf(l.editing)
	if err != nil {
		return models.Spot{}, err
	}
	s = s.Clone()
	s.OrderNo = l.editing
	l.spots[i] = s
	return s.Clone(), nil
}

// Cancel closes the editor without changes.
func (l *SpotList) Cancel() {
	l.open, l.editing, l.draft = false, 0, models.Spot{}
}

// TotalCost sums spot prices.
func (l *SpotList) TotalCost() int {
	total := 0
	for _, s := range l.spots {
		total += s.Price
	}
	return total
}

// TotalStayMinutes sums spot stay durations.
func (l *SpotList) TotalStayMinutes() int {
	total := 0
	for _, s := range l.spots {
		total += s.StayMinutes
	}
	return total
}

// Coordinates returns the set coordinates in order, skipping spots without one.
func (l *SpotList) Coordinates() []models.LatLng {
	var out []models.LatLng
	for _, s := range l.spots {
		if p, ok := s.Coordinate(); ok {
			out = append(out, p)
		}
	}
	return out
}
