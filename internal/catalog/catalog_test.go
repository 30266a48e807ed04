package catalog

import (
	"testing"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionsResolve(t *testing.T) {
	regions := DefaultRegions()

	t.Run("major with children requires a sub-region", func(t *testing.T) {
		_, err := regions.Resolve("SEOUL", "")
		assert.ErrorIs(t, err, shared.ErrSubRegionRequired)
	})

	t.Run("sub-region outside the major is rejected", func(t *testing.T) {
		_, err := regions.Resolve("SEOUL", "BUSAN_HAEUNDAE")
		assert.ErrorIs(t, err, shared.ErrSubRegionRequired)
	})

	t.Run("chosen sub-region is the final region", func(t *testing.T) {
		r, err := regions.Resolve("SEOUL", "SEOUL_MAPO")
		require.NoError(t, err)
		assert.Equal(t, "SEOUL_MAPO", r.Code)
		assert.Equal(t, "서울 마포구", r.Name)
	})

	t.Run("major without children stands alone", func(t *testing.T) {
		r, err := regions.Resolve("SEJONG", "")
		require.NoError(t, err)
		assert.Equal(t, models.Region{Code: "SEJONG", Name: "세종"}, r)
	})

	t.Run("unknown major", func(t *testing.T) {
		_, err := regions.Resolve("ATLANTIS", "")
		assert.ErrorIs(t, err, shared.ErrUnknownRegion)

		_, err = regions.Resolve("", "")
		assert.ErrorIs(t, err, shared.ErrUnknownRegion)
	})

	t.Run("all seventeen majors are present", func(t *testing.T) {
		assert.Len(t, regions.Majors(), 17)
		assert.Empty(t, regions.Children("SEJONG"))
		assert.NotEmpty(t, regions.Children("JEJU"))
	})
}

func TestSelection(t *testing.T) {
	s := NewSelection(DefaultRegions())

	require.NoError(t, s.SelectMajor("BUSAN"))
	assert.True(t, s.NeedsSub())

	require.NoError(t, s.SelectSub("BUSAN_HAEUNDAE"))
	assert.False(t, s.NeedsSub())

	r, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "BUSAN_HAEUNDAE", r.Code)

	t.Run("changing major clears sub", func(t *testing.T) {
		require.NoError(t, s.SelectMajor("JEJU"))
		assert.Empty(t, s.Sub())
		_, err := s.Resolve()
		assert.ErrorIs(t, err, shared.ErrSubRegionRequired)
	})

	t.Run("reselecting the same major keeps sub", func(t *testing.T) {
		require.NoError(t, s.SelectSub("JEJU_SEOGWIPO"))
		require.NoError(t, s.SelectMajor("JEJU"))
		assert.Equal(t, "JEJU_SEOGWIPO", s.Sub())
	})

	t.Run("invalid choices are rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.SelectMajor("NOWHERE"), shared.ErrUnknownRegion)
		assert.ErrorIs(t, s.SelectSub("SEOUL_MAPO"), shared.ErrUnknownRegion)
	})
}

func TestFilterCategories(t *testing.T) {
	cats := []models.Category{
		{ID: "1", Name: "데이트", Slug: "date"},
		{ID: "2", Name: "테마", Slug: "theme"},
		{ID: "3", Name: "맛집", Slug: "food"},
		{ID: "4", Name: "Seasonal", Slug: "seasonal", Hidden: true},
	}

	t.Run("sentinel name never reaches pickers", func(t *testing.T) {
		out := FilterCategories(cats, DefaultHiddenCategories)
		for _, c := range out {
			assert.NotEqual(t, "테마", c.Name)
		}
		assert.Len(t, out, 2)
	})

	t.Run("hidden flag wins without a name list", func(t *testing.T) {
		out := FilterCategories(cats, nil)
		assert.Len(t, out, 3)
		for _, c := range out {
			assert.False(t, c.Hidden)
		}
	})

	t.Run("slug match and input untouched", func(t *testing.T) {
		out := FilterCategories(cats, []string{" FOOD "})
		assert.Len(t, out, 2)
		assert.Len(t, cats, 4)
	})

	t.Run("FindCategory", func(t *testing.T) {
		c, ok := FindCategory(cats, "food")
		assert.True(t, ok)
		assert.Equal(t, "3", c.ID)

		_, ok = FindCategory(cats, "nope")
		assert.False(t, ok)
	})
}
