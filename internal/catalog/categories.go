package catalog

import (
	"strings"

	"github.com/desertthunder/coursemap/internal/models"
)

// DefaultHiddenCategories is used when no hidden list is configured.
var DefaultHiddenCategories = []string{"테마"}

// FilterCategories drops categories that must not appear in pickers: those flagged Hidden by the backend and
// those whose name or slug matches an entry in hidden (compared case-insensitively after trimming).
//
// The input slice is not modified.
func FilterCategories(cats []models.Category, hidden []string) []models.Category {
	names := make(map[string]struct{}, len(hidden))
	for _, h := range hidden {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			names[h] = struct{}{}
		}
	}

	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if c.Hidden {
			continue
		}
		if _, ok := names[strings.ToLower(strings.TrimSpace(c.Name))]; ok {
			continue
		}
		if _, ok := names[strings.ToLower(c.Slug)]; ok && c.Slug != "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FindCategory matches ref against category id, slug or name.
func FindCategory(cats []models.Category, ref string) (models.Category, bool) {
	for _, c := range cats {
		if c.ID == ref || c.Slug == ref || c.Name == ref {
			return c, true
		}
	}
	return models.Category{}, false
}
