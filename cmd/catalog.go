package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/urfave/cli/v3"
)

// CatalogCategories lists the categories offered when creating a course.
func (r *Runner) CatalogCategories(ctx context.Context, cmd *cli.Command) error {
	categories, err := r.courses.Categories(ctx)
	if err != nil {
		return err
	}

	if !cmd.Bool("all") {
		hidden := r.config.Catalog.HiddenCategories
		if len(hidden) == 0 {
			hidden = catalog.DefaultHiddenCategories
		}
		categories = catalog.FilterCategories(categories, hidden)
	}

	if cmd.Bool("json") {
		return r.writeJSON(categories, cmd.Bool("pretty"))
	}

	for _, c := range categories {
		line := fmt.Sprintf("%-12s %s", c.Slug, c.Name)
		if c.Hidden {
			line += " (hidden)"
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// CatalogRegions lists major regions, or the sub-regions of one major region.
func (r *Runner) CatalogRegions(ctx context.Context, cmd *cli.Command) error {
	if code := cmd.StringArg("major"); code != "" {
		major, ok := r.regions.Major(code)
		if !ok {
			return fmt.Errorf("unknown region %q, run 'cmap catalog regions' for the list", code)
		}
		if cmd.Bool("json") {
			return r.writeJSON(major, cmd.Bool("pretty"))
		}
		if !major.HasChildren() {
			return r.writePlain("%s has no sub-regions\n", major.Name)
		}
		r.writePlainHeader(major.Name)
		for _, c := range major.Children {
			r.writePlain("%-8s %s\n", c.Code, c.Name)
		}
		return nil
	}

	majors := r.regions.Majors()
	if cmd.Bool("json") {
		return r.writeJSON(majors, cmd.Bool("pretty"))
	}
	for _, m := range majors {
		if m.HasChildren() {
			r.writePlain("%-8s %s (%d sub-regions)\n", m.Code, m.Name, len(m.Children))
		} else {
			r.writePlain("%-8s %s\n", m.Code, m.Name)
		}
	}
	return nil
}
