package editor

import (
	"math/rand"
	"testing"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spot(title string, price int) models.Spot {
	s := models.Spot{Title: title, Price: price}
	s.SetCoordinate(models.LatLng{Lat: 37.5, Lng: 127})
	return s
}

func titles(l *SpotList) []string {
	var out []string
	for _, s := range l.Spots() {
		out = append(out, s.Title)
	}
	return out
}

func assertDense(t *testing.T, l *SpotList) {
	t.Helper()
	for i, s := range l.Spots() {
		require.Equal(t, i+1, s.OrderNo, "order numbers must match position")
	}
}

func TestSpotListAdd(t *testing.T) {
	l := NewSpotList()

	a := l.Add(spot("a", 0))
	b := l.Add(models.Spot{Title: "b", OrderNo: 99})
	c := l.AddAt(models.LatLng{Lat: 35.1, Lng: 129})

	assert.Equal(t, 1, a.OrderNo)
	assert.Equal(t, 2, b.OrderNo)
	assert.Equal(t, 3, c.OrderNo)

	p, ok := c.Coordinate()
	assert.True(t, ok)
	assert.Equal(t, 35.1, p.Lat)
	assert.Empty(t, c.Title)
}

func TestSpotListDeleteRenumbers(t *testing.T) {
	l := NewSpotList(spot("a", 0), spot("b", 0), spot("c", 0), spot("d", 0))

	require.NoError(t, l.Delete(2))
	assert.Equal(t, []string{"a", "c", "d"}, titles(l))
	assertDense(t, l)

	assert.ErrorIs(t, l.Delete(9), shared.ErrSpotNotFound)
	assert.ErrorIs(t, l.Delete(0), shared.ErrSpotNotFound)
}

func TestSpotListMove(t *testing.T) {
	l := NewSpotList(spot("a", 0), spot("b", 0), spot("c", 0))

	require.NoError(t, l.MoveUp(3))
	assert.Equal(t, []string{"a", "c", "b"}, titles(l))
	assertDense(t, l)

	require.NoError(t, l.MoveDown(1))
	assert.Equal(t, []string{"c", "a", "b"}, titles(l))
	assertDense(t, l)

	t.Run("boundary moves are no-ops", func(t *testing.T) {
		before := l.Spots()

		require.NoError(t, l.MoveUp(1))
		assert.Equal(t, before, l.Spots())

		require.NoError(t, l.MoveDown(3))
		assert.Equal(t, before, l.Spots())
	})

	t.Run("unknown spot", func(t *testing.T) {
		assert.ErrorIs(t, l.MoveUp(4), shared.ErrSpotNotFound)
	})
}

func TestSpotListOrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l := NewSpotList()

	for step := 0; step < 500; step++ {
		n := l.Len()
		switch op := rng.Intn(4); {
		case op == 0 || n == 0:
			l.Add(spot("s", rng.Intn(5000)))
		case op == 1:
			require.NoError(t, l.Delete(rng.Intn(n)+1))
		case op == 2:
			require.NoError(t, l.MoveUp(rng.Intn(n)+1))
		default:
			require.NoError(t, l.MoveDown(rng.Intn(n)+1))
		}
		assertDense(t, l)
	}
}

func TestSpotListEditing(t *testing.T) {
	l := NewSpotList(spot("a", 100), spot("b", 200), spot("c", 300))

	t.Run("save replaces in place", func(t *testing.T) {
		draft, err := l.BeginEdit(2)
		require.NoError(t, err)
		assert.Equal(t, "b", draft.Title)

		draft.Title = "B"
		draft.Price = 250
		draft.OrderNo = 7

		saved, err := l.Save(draft)
		require.NoError(t, err)
		assert.Equal(t, 2, saved.OrderNo)
		assert.Equal(t, []string{"a", "B", "c"}, titles(l))

		_, _, open := l.Editing()
		assert.False(t, open)
	})

	t.Run("save while adding appends", func(t *testing.T) {
		at := models.LatLng{Lat: 1, Lng: 2}
		draft := l.BeginAdd(&at)
		_, orderNo, open := l.Editing()
		assert.True(t, open)
		assert.Zero(t, orderNo)

		draft.Title = "d"
		saved, err := l.Save(draft)
		require.NoError(t, err)
		assert.Equal(t, 4, saved.OrderNo)
	})

	t.Run("save without editor", func(t *testing.T) {
		_, err := l.Save(spot("x", 0))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("edit follows the spot when it moves", func(t *testing.T) {
		_, err := l.BeginEdit(1)
		require.NoError(t, err)
		require.NoError(t, l.MoveDown(1))

		_, orderNo, open := l.Editing()
		assert.True(t, open)
		assert.Equal(t, 2, orderNo)

		l.Cancel()
	})

	t.Run("deleting the edited spot closes the editor", func(t *testing.T) {
		_, err := l.BeginEdit(3)
		require.NoError(t, err)
		require.NoError(t, l.Delete(3))

		_, _, open := l.Editing()
		assert.False(t, open)
	})
}

func TestSpotListTotals(t *testing.T) {
	l := NewSpotList(spot("a", 1000), spot("b", 0), spot("c", 2500))
	assert.Equal(t, 3500, l.TotalCost())

	require.NoError(t, l.Delete(1))
	assert.Equal(t, 2500, l.TotalCost())

	l.Add(spot("d", 700))
	assert.Equal(t, 3200, l.TotalCost())
}

func TestSpotListCopies(t *testing.T) {
	l := NewSpotList(spot("a", 0))

	out := l.Spots()
	out[0].Title = "mutated"
	*out[0].Lat = 0

	s, err := l.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "a", s.Title)
	assert.Equal(t, 37.5, *s.Lat)
}

func TestSpotListSetCoordinate(t *testing.T) {
	l := NewSpotList(spot("a", 0))

	require.NoError(t, l.SetCoordinate(1, models.LatLng{Lat: 33.5, Lng: 126.5}))
	assert.Equal(t, []models.LatLng{{Lat: 33.5, Lng: 126.5}}, l.Coordinates())
	assert.ErrorIs(t, l.SetCoordinate(2, models.LatLng{}), shared.ErrSpotNotFound)
}

func TestNewSpotListSortsByOrderNo(t *testing.T) {
	l := NewSpotList(
		models.Spot{OrderNo: 3, Title: "c"},
		models.Spot{OrderNo: 1, Title: "a"},
		models.Spot{OrderNo: 7, Title: "d"},
	)
	assert.Equal(t, []string{"a", "c", "d"}, titles(l))
	assertDense(t, l)
}
