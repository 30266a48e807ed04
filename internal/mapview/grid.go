package mapview

import (
	"math"
	"strings"
	"sync"

	"github.com/desertthunder/coursemap/internal/models"
)

const (
	minZoom         = 1
	maxZoom         = 18
	animationFrames = 8

	// absorbs float error so a point on a cell edge lands in the cell to its right/below
	projectionEpsilon = 1e-9
)

// Cell is a character position on the grid.
type Cell struct {
	Col, Row int
}

// GridProvider is a [Provider] that projects the map onto a width x height character grid. Terminal cells
// are roughly twice as tall as they are wide, so a cell spans twice as many degrees of latitude as longitude.
type GridProvider struct {
	mu sync.Mutex

	width, height int
	viewport      Viewport
	markers       []Marker
	path          []models.LatLng
	frames        []Viewport

	nextID    int
	clicks    map[int]func(models.LatLng)
	drags     map[int]func(string, models.LatLng)
	viewports map[int]func(Viewport, Bounds)
}

// NewGridProvider creates a grid of the given size showing v.
func NewGridProvider(width, height int, v Viewport) *GridProvider {
	if width <= 0 {
		width = 48
	}
	if height <= 0 {
		height = 16
	}
	v.Zoom = clampZoom(v.Zoom)

	return &GridProvider{
		width:     width,
		height:    height,
		viewport:  v,
		clicks:    map[int]func(models.LatLng){},
		drags:     map[int]func(string, models.LatLng){},
		viewports: map[int]func(Viewport, Bounds){},
	}
}

func clampZoom(z int) int {
	return min(max(z, minZoom), maxZoom)
}

type gridListener struct {
	once   sync.Once
	remove func()
}

func (l *gridListener) Remove() { l.once.Do(l.remove) }

func register[F any](g *GridProvider, set map[int]F, fn F) Listener {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	set[id] = fn
	g.mu.Unlock()

	return &gridListener{remove: func() {
		g.mu.Lock()
		delete(set, id)
		g.mu.Unlock()
	}}
}

// OnClick implements [Provider].
func (g *GridProvider) OnClick(fn func(models.LatLng)) Listener { return register(g, g.clicks, fn) }

// OnDragEnd implements [Provider].
func (g *GridProvider) OnDragEnd(fn func(string, models.LatLng)) Listener {
	return register(g, g.drags, fn)
}

// OnViewportChanged implements [Provider].
func (g *GridProvider) OnViewportChanged(fn func(Viewport, Bounds)) Listener {
	return register(g, g.viewports, fn)
}

// ListenerCount returns the number of attached listeners.
func (g *GridProvider) ListenerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clicks) + len(g.drags) + len(g.viewports)
}

// RenderMarkers implements [Provider].
func (g *GridProvider) RenderMarkers(markers []Marker) {
	g.mu.Lock()
	g.markers = append([]Marker(nil), markers...)
	g.mu.Unlock()
}

// RenderPath implements [Provider].
func (g *GridProvider) RenderPath(points []models.LatLng) {
	g.mu.Lock()
	g.path = append([]models.LatLng(nil), points...)
	g.mu.Unlock()
}

// SetViewport implements [Provider]. An animated change records interpolated frames before settling.
func (g *GridProvider) SetViewport(v Viewport, animate bool) {
	v.Zoom = clampZoom(v.Zoom)

	g.mu.Lock()
	from := g.viewport
	g.frames = g.frames[:0]
	if animate && from != v {
		for i := 1; i <= animationFrames; i++ {
			t := float64(i) / animationFrames
			g.frames = append(g.frames, Viewport{
				Center: models.LatLng{
					Lat: from.Center.Lat + (v.Center.Lat-from.Center.Lat)*t,
					Lng: from.Center.Lng + (v.Center.Lng-from.Center.Lng)*t,
				},
				Zoom: int(math.Round(float64(from.Zoom) + float64(v.Zoom-from.Zoom)*t)),
			})
		}
	}
	g.viewport = v
	g.mu.Unlock()

	g.emitViewport()
}

// Frames returns the transition recorded by the last SetViewport call.
func (g *GridProvider) Frames() []Viewport {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Viewport(nil), g.frames...)
}

// Viewport returns the current viewport.
func (g *GridProvider) Viewport() Viewport {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewport
}

func (g *GridProvider) cellSize() (lat, lng float64) {
	lng = 360 / math.Pow(2, float64(g.viewport.Zoom)) / float64(g.width)
	return lng * 2, lng
}

func (g *GridProvider) boundsLocked() Bounds {
	cellLat, cellLng := g.cellSize()
	halfLat := cellLat * float64(g.height) / 2
	halfLng := cellLng * float64(g.width) / 2
	c := g.viewport.Center
	return Bounds{
		SouthWest: models.LatLng{Lat: c.Lat - halfLat, Lng: c.Lng - halfLng},
		NorthEast: models.LatLng{Lat: c.Lat + halfLat, Lng: c.Lng + halfLng},
	}
}

// Bounds returns the visible rectangle.
func (g *GridProvider) Bounds() Bounds {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.boundsLocked()
}

func (g *GridProvider) cellToLatLngLocked(c Cell) models.LatLng {
	cellLat, cellLng := g.cellSize()
	b := g.boundsLocked()
	return models.LatLng{
		Lat: b.NorthEast.Lat - (float64(c.Row)+0.5)*cellLat,
		Lng: b.SouthWest.Lng + (float64(c.Col)+0.5)*cellLng,
	}
}

// CellToLatLng converts a grid cell to the coordinate at its center.
func (g *GridProvider) CellToLatLng(c Cell) models.LatLng {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cellToLatLngLocked(c)
}

// cellOfLocked returns the cell p falls in, which may lie outside the grid.
func (g *GridProvider) cellOfLocked(p models.LatLng) Cell {
	cellLat, cellLng := g.cellSize()
	b := g.boundsLocked()
	return Cell{
		Col: int(math.Floor((p.Lng-b.SouthWest.Lng)/cellLng + projectionEpsilon)),
		Row: int(math.Floor((b.NorthEast.Lat-p.Lat)/cellLat + projectionEpsilon)),
	}
}

func (g *GridProvider) inside(c Cell) bool {
	return c.Col >= 0 && c.Col < g.width && c.Row >= 0 && c.Row < g.height
}

func (g *GridProvider) projectLocked(p models.LatLng) (Cell, bool) {
	c := g.cellOfLocked(p)
	if !g.inside(c) {
		return Cell{}, false
	}
	return c, true
}

// Project returns the cell showing p and whether it is on screen.
func (g *GridProvider) Project(p models.LatLng) (Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.projectLocked(p)
}

// Click simulates a click on cell c, delivering its coordinate to click listeners.
func (g *GridProvider) Click(c Cell) models.LatLng {
	g.mu.Lock()
	p := g.cellToLatLngLocked(c)
	fns := make([]func(models.LatLng), 0, len(g.clicks))
	for _, fn := range g.clicks {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
	return p
}

// Drag moves marker id to cell c and notifies drag-end listeners. Only draggable markers move.
func (g *GridProvider) Drag(id string, c Cell) bool {
	g.mu.Lock()
	idx := -1
	for i, m := range g.markers {
		if m.ID == id && m.Draggable {
			idx = i
			break
		}
	}
	if idx < 0 {
		g.mu.Unlock()
		return false
	}

	p := g.cellToLatLngLocked(c)
	g.markers[idx].Position = p
	fns := make([]func(string, models.LatLng), 0, len(g.drags))
	for _, fn := range g.drags {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(id, p)
	}
	return true
}

// Pan shifts the view by whole cells, a user gesture.
func (g *GridProvider) Pan(dCol, dRow int) {
	g.mu.Lock()
	cellLat, cellLng := g.cellSize()
	g.viewport.Center.Lng += float64(dCol) * cellLng
	g.viewport.Center.Lat -= float64(dRow) * cellLat
	g.mu.Unlock()

	g.emitViewport()
}

// Zoom changes the zoom level by delta, a user gesture.
func (g *GridProvider) Zoom(delta int) {
	g.mu.Lock()
	g.viewport.Zoom = clampZoom(g.viewport.Zoom + delta)
	g.mu.Unlock()

	g.emitViewport()
}

func (g *GridProvider) emitViewport() {
	g.mu.Lock()
	v, b := g.viewport, g.boundsLocked()
	fns := make([]func(Viewport, Bounds), 0, len(g.viewports))
	for _, fn := range g.viewports {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(v, b)
	}
}

// Size returns the grid dimensions.
func (g *GridProvider) Size() (width, height int) {
	return g.width, g.height
}

// Render draws the grid. The route is drawn first with line runes, then cursor, when non-nil, as '+'.
// Normal markers show the first rune of their label and large markers are drawn as '@'.
func (g *GridProvider) Render(cursor *Cell) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	grid := make([][]rune, g.height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat("·", g.width))
	}

	for i := 1; i < len(g.path); i++ {
		g.drawSegmentLocked(grid, g.cellOfLocked(g.path[i-1]), g.cellOfLocked(g.path[i]))
	}

	if cursor != nil && g.inside(*cursor) {
		grid[cursor.Row][cursor.Col] = '+'
	}

	// Large markers are drawn last so they stay on top.
	for _, pass := range []MarkerSize{SizeNormal, SizeLarge} {
		for _, m := range g.markers {
			if m.Size != pass {
				continue
			}
			c, ok := g.projectLocked(m.Position)
			if !ok {
				continue
			}
			grid[c.Row][c.Col] = markerRune(m)
		}
	}

	lines := make([]string, g.height)
	for r, row := range grid {
		lines[r] = string(row)
	}
	return strings.Join(lines, "\n")
}

// drawSegmentLocked rasterizes the segment from a to b, skipping cells off the grid.
func (g *GridProvider) drawSegmentLocked(grid [][]rune, a, b Cell) {
	dCol, dRow := b.Col-a.Col, b.Row-a.Row
	r := segmentRune(dCol, dRow)

	steps := max(abs(dCol), abs(dRow))
	for i := 0; i <= steps; i++ {
		c := a
		if steps > 0 {
			t := float64(i) / float64(steps)
			c = Cell{
				Col: a.Col + int(math.Round(float64(dCol)*t)),
				Row: a.Row + int(math.Round(float64(dRow)*t)),
			}
		}
		if g.inside(c) {
			grid[c.Row][c.Col] = r
		}
	}
}

// segmentRune picks a line rune for the direction. Rows grow downward.
func segmentRune(dCol, dRow int) rune {
	switch {
	case abs(dRow)*2 <= abs(dCol):
		return '-'
	case abs(dCol)*2 <= abs(dRow):
		return '|'
	case (dCol > 0) == (dRow < 0):
		return '/'
	default:
		return '\\'
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func markerRune(m Marker) rune {
	if m.Size == SizeLarge {
		return '@'
	}
	for _, r := range m.Label {
		return r
	}
	return 'o'
}
