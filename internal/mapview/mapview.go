// Package mapview abstracts an interactive map behind a small capability interface.
//
// [Adapter] owns the listener lifecycle, the active marker and empty-viewport reporting; a [Provider] only
// draws markers and emits gestures. [GridProvider] is the terminal implementation used by the TUI.
package mapview

import (
	"math"
	"sync"

	"github.com/desertthunder/coursemap/internal/models"
)

// DefaultCenter is Seoul City Hall, used when there is nothing to center on.
var DefaultCenter = models.LatLng{Lat: 37.5665, Lng: 126.978}

// MarkerSize distinguishes the active marker from the rest.
type MarkerSize int

const (
	SizeNormal MarkerSize = iota
	SizeLarge
)

// Marker is a pin on the map.
type Marker struct {
	ID        string
	Position  models.LatLng
	Label     string
	Size      MarkerSize
	Draggable bool
}

// Viewport is a map center and zoom level.
type Viewport struct {
	Center models.LatLng
	Zoom   int
}

// Bounds is the visible rectangle.
type Bounds struct {
	SouthWest models.LatLng
	NorthEast models.LatLng
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p models.LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// Listener is a registered event handler.
type Listener interface {
	Remove()
}

// Provider is the capability set a concrete map must offer.
type Provider interface {
	RenderMarkers(markers []Marker)
	RenderPath(points []models.LatLng) // route through points in order, drawn under the markers
	OnClick(fn func(models.LatLng)) Listener
	OnDragEnd(fn func(id string, p models.LatLng)) Listener
	SetViewport(v Viewport, animate bool)
	OnViewportChanged(fn func(Viewport, Bounds)) Listener
}

// Handlers are the callbacks an owner binds through [Adapter.Bind]. Nil fields are skipped.
type Handlers struct {
	OnClick   func(models.LatLng)
	OnDragEnd func(id string, p models.LatLng)
	OnEmpty   func(empty bool)
}

// Adapter drives a [Provider] for one owning view.
type Adapter struct {
	mu        sync.Mutex
	provider  Provider
	markers   []Marker
	path      []models.LatLng
	activeID  string
	listeners []Listener
	handlers  Handlers
	viewport  Viewport
	bounds    *Bounds
}

// NewAdapter wraps p, assuming it currently shows initial.
func NewAdapter(p Provider, initial Viewport) *Adapter {
	return &Adapter{provider: p, viewport: initial}
}

// SetMarkers renders markers, drawing the one whose ID is activeID large.
func (a *Adapter) SetMarkers(markers []Marker, activeID string) {
	a.mu.Lock()
	a.markers = make([]Marker, len(markers))
	for i, m := range markers {
		m.Size = SizeNormal
		if m.ID == activeID && activeID != "" {
			m.Size = SizeLarge
		}
		a.markers[i] = m
	}
	a.activeID = activeID
	rendered := append([]Marker(nil), a.markers...)
	a.mu.Unlock()

	a.provider.RenderMarkers(rendered)
	a.reportEmpty()
}

// SetPath draws the route connecting points. Fewer than two points clear it.
func (a *Adapter) SetPath(points []models.LatLng) {
	a.mu.Lock()
	if len(points) < 2 {
		a.path = nil
	} else {
		a.path = append([]models.LatLng(nil), points...)
	}
	rendered := append([]models.LatLng(nil), a.path...)
	a.mu.Unlock()

	a.provider.RenderPath(rendered)
}

// Path returns the route as last rendered.
func (a *Adapter) Path() []models.LatLng {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.LatLng(nil), a.path...)
}

// Markers returns the markers as last rendered.
func (a *Adapter) Markers() []Marker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Marker(nil), a.markers...)
}

// Bind detaches any listeners from a previous Bind and attaches h.
func (a *Adapter) Bind(h Handlers) {
	a.Close()

	a.mu.Lock()
	a.handlers = h
	a.mu.Unlock()

	listeners := []Listener{
		a.provider.OnViewportChanged(a.viewportChanged),
	}
	if h.OnClick != nil {
		listeners = append(listeners, a.provider.OnClick(h.OnClick))
	}
	if h.OnDragEnd != nil {
		listeners = append(listeners, a.provider.OnDragEnd(h.OnDragEnd))
	}

	a.mu.Lock()
	a.listeners = listeners
	a.mu.Unlock()
}

// Close detaches every listener this adapter attached.
func (a *Adapter) Close() {
	a.mu.Lock()
	listeners := a.listeners
	a.listeners = nil
	a.handlers = Handlers{}
	a.mu.Unlock()

	for _, l := range listeners {
		l.Remove()
	}
}

// MoveTo animates to center and zoom. Nothing happens when the target equals the current viewport; the
// return value reports whether a transition was started.
func (a *Adapter) MoveTo(center models.LatLng, zoom int) bool {
	target := Viewport{Center: center, Zoom: zoom}

	a.mu.Lock()
	if a.viewport == target {
		a.mu.Unlock()
		return false
	}
	a.viewport = target
	a.mu.Unlock()

	a.provider.SetViewport(target, true)
	return true
}

// FitTo centers on the centroid of points, keeping the current zoom.
func (a *Adapter) FitTo(points []models.LatLng) bool {
	a.mu.Lock()
	zoom := a.viewport.Zoom
	a.mu.Unlock()
	return a.MoveTo(Centroid(points), zoom)
}

// Viewport returns the last known viewport.
func (a *Adapter) Viewport() Viewport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewport
}

func (a *Adapter) viewportChanged(v Viewport, b Bounds) {
	a.mu.Lock()
	a.viewport = v
	a.bounds = &b
	a.mu.Unlock()
	a.reportEmpty()
}

func (a *Adapter) reportEmpty() {
	a.mu.Lock()
	onEmpty := a.handlers.OnEmpty
	if onEmpty == nil || a.bounds == nil {
		a.mu.Unlock()
		return
	}
	visible := 0
	for _, m := range a.markers {
		if a.bounds.Contains(m.Position) {
			visible++
		}
	}
	a.mu.Unlock()

	onEmpty(visible == 0)
}

// Centroid averages points, returning [DefaultCenter] for an empty slice.
func Centroid(points []models.LatLng) models.LatLng {
	if len(points) == 0 {
		return DefaultCenter
	}

	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return models.LatLng{Lat: lat / n, Lng: lng / n}
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b models.LatLng) float64 {
	const earthRadius = 6371000.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(h))
}
