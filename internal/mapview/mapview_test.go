package mapview

import (
	"testing"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = Viewport{Center: DefaultCenter, Zoom: 12}

func TestCentroid(t *testing.T) {
	assert.Equal(t, DefaultCenter, Centroid(nil))

	c := Centroid([]models.LatLng{{Lat: 37, Lng: 127}, {Lat: 38, Lng: 128}})
	assert.InDelta(t, 37.5, c.Lat, 1e-9)
	assert.InDelta(t, 127.5, c.Lng, 1e-9)
}

func TestDistance(t *testing.T) {
	assert.Zero(t, Distance(DefaultCenter, DefaultCenter))

	// Seoul City Hall to Busan station is roughly 325 km.
	d := Distance(DefaultCenter, models.LatLng{Lat: 35.1152, Lng: 129.0422})
	assert.InDelta(t, 325000, d, 10000)
}

func TestGridProviderProjection(t *testing.T) {
	g := NewGridProvider(40, 10, seoul)

	t.Run("center projects to the middle cell", func(t *testing.T) {
		c, ok := g.Project(DefaultCenter)
		require.True(t, ok)
		assert.Equal(t, Cell{Col: 20, Row: 5}, c)
	})

	t.Run("cell center round trips", func(t *testing.T) {
		for _, cell := range []Cell{{0, 0}, {39, 9}, {12, 3}} {
			p := g.CellToLatLng(cell)
			got, ok := g.Project(p)
			require.True(t, ok)
			assert.Equal(t, cell, got)
		}
	})

	t.Run("off screen", func(t *testing.T) {
		_, ok := g.Project(models.LatLng{Lat: 33.5, Lng: 126.5})
		assert.False(t, ok)
	})

	t.Run("bounds contain center", func(t *testing.T) {
		assert.True(t, g.Bounds().Contains(DefaultCenter))
	})
}

func TestGridProviderClickAndDrag(t *testing.T) {
	g := NewGridProvider(40, 10, seoul)

	var clicked []models.LatLng
	l := g.OnClick(func(p models.LatLng) { clicked = append(clicked, p) })

	p := g.Click(Cell{Col: 3, Row: 4})
	require.Len(t, clicked, 1)
	assert.Equal(t, p, clicked[0])

	l.Remove()
	l.Remove()
	g.Click(Cell{Col: 3, Row: 4})
	assert.Len(t, clicked, 1, "removed listener must not fire")

	t.Run("drag moves only draggable markers", func(t *testing.T) {
		g.RenderMarkers([]Marker{
			{ID: "pin", Position: DefaultCenter, Draggable: true},
			{ID: "fixed", Position: DefaultCenter},
		})

		var dragged string
		g.OnDragEnd(func(id string, _ models.LatLng) { dragged = id })

		assert.False(t, g.Drag("fixed", Cell{Col: 1, Row: 1}))
		assert.Empty(t, dragged)

		assert.True(t, g.Drag("pin", Cell{Col: 1, Row: 1}))
		assert.Equal(t, "pin", dragged)
	})
}

func TestGridProviderAnimation(t *testing.T) {
	g := NewGridProvider(40, 10, seoul)

	target := Viewport{Center: models.LatLng{Lat: 37.6, Lng: 127.0}, Zoom: 14}
	g.SetViewport(target, true)

	frames := g.Frames()
	require.Len(t, frames, animationFrames)
	assert.Equal(t, target, frames[len(frames)-1])
	assert.Equal(t, target, g.Viewport())
	assert.Greater(t, frames[0].Center.Lat, seoul.Center.Lat)
	assert.Less(t, frames[0].Center.Lat, target.Center.Lat)

	g.SetViewport(seoul, false)
	assert.Empty(t, g.Frames())
}

func TestGridProviderRender(t *testing.T) {
	g := NewGridProvider(10, 4, seoul)
	g.RenderMarkers([]Marker{
		{ID: "1", Position: g.CellToLatLng(Cell{Col: 1, Row: 1}), Label: "1"},
		{ID: "2", Position: g.CellToLatLng(Cell{Col: 8, Row: 2}), Label: "2", Size: SizeLarge},
	})

	out := g.Render(&Cell{Col: 0, Row: 0})
	lines := splitLines(out)
	require.Len(t, lines, 4)
	assert.Equal(t, '+', []rune(lines[0])[0])
	assert.Equal(t, '1', []rune(lines[1])[1])
	assert.Equal(t, '@', []rune(lines[2])[8])
}

func TestGridProviderRenderPath(t *testing.T) {
	g := NewGridProvider(10, 6, seoul)
	a := g.CellToLatLng(Cell{Col: 1, Row: 1})
	b := g.CellToLatLng(Cell{Col: 7, Row: 1})
	c := g.CellToLatLng(Cell{Col: 7, Row: 5})
	g.RenderMarkers([]Marker{
		{ID: "1", Position: a, Label: "1"},
		{ID: "2", Position: b, Label: "2"},
		{ID: "3", Position: c, Label: "3"},
	})
	g.RenderPath([]models.LatLng{a, b, c})

	lines := splitLines(g.Render(nil))
	require.Len(t, lines, 6)
	row1 := []rune(lines[1])
	assert.Equal(t, '1', row1[1], "markers stay on top of the route")
	assert.Equal(t, "-----", string(row1[2:7]))
	assert.Equal(t, '2', row1[7])
	for r := 2; r <= 4; r++ {
		assert.Equal(t, '|', []rune(lines[r])[7])
	}
	assert.Equal(t, '3', []rune(lines[5])[7])
	assert.Equal(t, '·', []rune(lines[3])[3])

	t.Run("diagonal and clipped segments", func(t *testing.T) {
		g.RenderMarkers(nil)
		g.RenderPath([]models.LatLng{g.CellToLatLng(Cell{Col: 0, Row: 5}), g.CellToLatLng(Cell{Col: 5, Row: 0})})
		lines := splitLines(g.Render(nil))
		assert.Equal(t, '/', []rune(lines[2])[3])

		g.RenderPath([]models.LatLng{g.CellToLatLng(Cell{Col: -5, Row: 2}), g.CellToLatLng(Cell{Col: 3, Row: 2})})
		lines = splitLines(g.Render(nil))
		assert.Equal(t, "----", string([]rune(lines[2])[0:4]))
	})
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func TestAdapter(t *testing.T) {
	t.Run("active marker is large", func(t *testing.T) {
		g := NewGridProvider(40, 10, seoul)
		a := NewAdapter(g, seoul)

		a.SetMarkers([]Marker{{ID: "a", Size: SizeLarge}, {ID: "b"}}, "b")
		m := a.Markers()
		assert.Equal(t, SizeNormal, m[0].Size)
		assert.Equal(t, SizeLarge, m[1].Size)
	})

	t.Run("path needs two points", func(t *testing.T) {
		g := NewGridProvider(40, 10, seoul)
		a := NewAdapter(g, seoul)

		route := []models.LatLng{DefaultCenter, {Lat: 37.57, Lng: 126.98}}
		a.SetPath(route)
		assert.Equal(t, route, a.Path())

		a.SetPath(route[:1])
		assert.Empty(t, a.Path())
	})

	t.Run("rebinding does not accumulate listeners", func(t *testing.T) {
		g := NewGridProvider(40, 10, seoul)
		a := NewAdapter(g, seoul)

		clicks := 0
		for i := 0; i < 5; i++ {
			a.Bind(Handlers{
				OnClick:   func(models.LatLng) { clicks++ },
				OnDragEnd: func(string, models.LatLng) {},
				OnEmpty:   func(bool) {},
			})
		}
		assert.Equal(t, 3, g.ListenerCount())

		g.Click(Cell{})
		assert.Equal(t, 1, clicks)

		a.Close()
		assert.Zero(t, g.ListenerCount())
	})

	t.Run("MoveTo animates only on change", func(t *testing.T) {
		g := NewGridProvider(40, 10, seoul)
		a := NewAdapter(g, seoul)

		assert.False(t, a.MoveTo(seoul.Center, seoul.Zoom))
		assert.Empty(t, g.Frames())

		assert.True(t, a.MoveTo(models.LatLng{Lat: 37.57, Lng: 126.98}, 13))
		assert.Len(t, g.Frames(), animationFrames)
	})

	t.Run("reports empty viewport", func(t *testing.T) {
		g := NewGridProvider(40, 10, seoul)
		a := NewAdapter(g, seoul)

		var empties []bool
		a.Bind(Handlers{OnEmpty: func(e bool) { empties = append(empties, e) }})
		a.SetMarkers([]Marker{{ID: "a", Position: DefaultCenter}}, "")

		g.Pan(0, 0)
		require.NotEmpty(t, empties)
		assert.False(t, empties[len(empties)-1])

		a.MoveTo(models.LatLng{Lat: 33.4, Lng: 126.5}, 12)
		assert.True(t, empties[len(empties)-1])

		a.FitTo([]models.LatLng{DefaultCenter})
		assert.False(t, empties[len(empties)-1])
		assert.Equal(t, DefaultCenter, a.Viewport().Center)
	})
}
