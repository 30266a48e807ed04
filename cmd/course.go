package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/formatter"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/repositories"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/desertthunder/coursemap/internal/store"
	"github.com/desertthunder/coursemap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CourseList searches courses, one page at a time or every page with --all.
func (r *Runner) CourseList(ctx context.Context, cmd *cli.Command) error {
	q := models.CourseQuery{
		Q:       cmd.String("q"),
		Region:  cmd.String("region"),
		MaxCost: int(cmd.Int("max-cost")),
		Sort:    cmd.String("sort"),
		Page:    int(cmd.Int("page")),
		Size:    int(cmd.Int("size")),
	}

	if ref := cmd.String("category"); ref != "" {
		category, err := r.resolveCategory(ctx, ref)
		if err != nil {
			return err
		}
		q.CategoryID = category.ID
	}

	var page models.Page[models.CourseSummary]
	if cmd.Bool("all") {
		courses, err := r.engine.CollectAll(ctx, nil, q, tasks.CollectOpts{
			PageSize:  q.Size,
			RateLimit: r.config.Export.RateLimit,
		})
		if err != nil {
			return err
		}
		page = models.SinglePage(courses)
	} else {
		var err error
		if page, err = r.courses.List(ctx, q); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	if len(page.Content) == 0 {
		return r.writePlain("No courses found\n")
	}

	for _, c := range page.Content {
		r.writePlain("%s  %s\n", c.ID, c.Title)
		r.writePlain("    %s\n", courseFacts(c))
	}
	if !cmd.Bool("all") && page.TotalPages > 1 {
		r.writePlainln("Page %d of %d (%d courses)", page.Number+1, page.TotalPages, page.TotalElements)
	}
	return nil
}

func courseFacts(c models.CourseSummary) string {
	facts := []string{}
	if c.RegionName != "" {
		facts = append(facts, c.RegionName)
	}
	if c.EstimatedCost > 0 {
		facts = append(facts, shared.FormatWon(c.EstimatedCost))
	}
	if c.DurationMinutes > 0 {
		facts = append(facts, shared.FormatMinutes(c.DurationMinutes))
	}
	facts = append(facts, fmt.Sprintf("♥ %d", c.LikeCount))
	return strings.Join(facts, " • ")
}

// CourseShow prints a course with its spots in order.
func (r *Runner) CourseShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: course id", shared.ErrMissingArgument)
	}

	course, err := r.courses.Get(ctx, id)
	if err != nil {
		return err
	}

	var recs *models.Recommendations
	if cmd.Bool("recommend") {
		if recs, err = r.courses.Recommendations(ctx, id); err != nil {
			r.logger.Warn("failed to fetch recommendations", "id", id, "error", err)
		}
	}

	if cmd.Bool("json") {
		if recs == nil {
			return r.writeJSON(course, cmd.Bool("pretty"))
		}
		return r.writeJSON(map[string]any{"course": course, "recommendations": recs}, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(course)
	if err != nil {
		return err
	}
	r.writePlain("%s", text)

	if recs != nil {
		for _, group := range []struct {
			title   string
			courses []models.CourseSummary
		}{
			{"Liked by the same people", recs.RelatedByLikes},
			{"Same category", recs.SameCategory},
			{"Same region", recs.SameRegion},
		} {
			if len(group.courses) == 0 {
				continue
			}
			r.writePlainln("%s:", group.title)
			for _, c := range group.courses {
				r.writePlain("  %s  %s (%s)\n", c.ID, c.Title, courseFacts(c))
			}
		}
	}
	return nil
}

// CourseLike toggles the viewer's like on a course.
func (r *Runner) CourseLike(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: course id", shared.ErrMissingArgument)
	}
	if _, err := r.requireToken(); err != nil {
		return err
	}

	likes := store.NewCourseStore(r.courses, r.auth, shared.WithLogger(r.logger, "component", "likes"))
	if course, err := r.courses.Get(ctx, id); err == nil {
		likes.SeedLike(id, models.LikeState{Liked: course.Liked, LikeCount: course.LikeCount})
	} else {
		r.logger.Debug("could not read current like state", "id", id, "error", err)
	}

	state, err := likes.ToggleLike(ctx, id)
	if err != nil {
		return err
	}

	if state.Liked {
		return r.writePlain("♥ Liked (%d)\n", state.LikeCount)
	}
	return r.writePlain("♡ Unliked (%d)\n", state.LikeCount)
}

// CourseDelete removes a course owned by the viewer.
func (r *Runner) CourseDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: course id", shared.ErrMissingArgument)
	}
	token, err := r.requireToken()
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		answer, err := r.prompt(fmt.Sprintf("Delete course %s? (y/N)", id), "")
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			return r.writePlain("Cancelled\n")
		}
	}

	if err := r.courses.Delete(ctx, token, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted course %s\n", id)
}

// CourseExport writes courses to disk in the chosen format and records the run.
func (r *Runner) CourseExport(ctx context.Context, cmd *cli.Command) error {
	formatName := cmd.String("format")
	if formatName == "" {
		formatName = r.config.Export.Format
	}
	format, err := formatter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	ids := splitIDs(cmd.StringSlice("ids"))
	if q := cmd.String("q"); q != "" {
		if len(ids) > 0 {
			return fmt.Errorf("%w: cannot specify both --ids and --q", shared.ErrInvalidArgument)
		}
		r.writePlain("📥 Searching courses matching %q\n", q)
		courses, err := r.engine.CollectAll(ctx, nil, models.CourseQuery{Q: q}, tasks.CollectOpts{
			RateLimit: r.config.Export.RateLimit,
		})
		if err != nil {
			return err
		}
		for _, c := range courses {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: either --ids or --q must match at least one course", shared.ErrMissingArgument)
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.Export.RateLimit,
	}
	if opts.OutputDir == "" && r.config.Export.OutputDir != "" {
		opts.OutputDir = filepath.Join(r.config.Export.OutputDir, fmt.Sprintf("course_export_%d", time.Now().Unix()))
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Export.Workers
	}
	if !cmd.Bool("no-cover") {
		opts.FetchCover = r.fetchCover
	}

	r.logger.Info("starting export", "courses", len(ids), "format", format)
	r.writePlain("Exporting %d courses as %s...\n\n", len(ids), format)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchDetails:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExportCourse:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.BulkExport(ctx, progressCh, ids, opts)
	close(progressCh)
	<-printed

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalCourses)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d courses:\n", result.FailedExports)
		for _, c := range result.Results {
			if !c.Success {
				r.writePlain("  - %s: %s\n", c.CourseID, c.ErrorMsg)
			}
		}
	}
	return nil
}

func (r *Runner) fetchCover(ctx context.Context, url string) ([]byte, error) {
	client := r.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	return formatter.DownloadImage(ctx, client, url)
}

// splitIDs flattens repeated and comma separated id flags.
func splitIDs(values []string) []string {
	ids := []string{}
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// CourseExports lists recent export runs.
func (r *Runner) CourseExports(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return fmt.Errorf("%w: database not initialized, run 'cmap setup database'", shared.ErrServiceUnavailable)
	}

	runs, err := repositories.NewExportRunRepository(r.db).Recent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}
	if len(runs) == 0 {
		return r.writePlain("No exports yet\n")
	}

	for _, run := range runs {
		status := "running"
		if run.FinishedAt != nil {
			status = fmt.Sprintf("%d/%d exported", run.Succeeded, run.Total)
		}
		r.writePlain("%s  %-8s %s  %s\n", run.StartedAt.Format("2006-01-02 15:04"), run.Format, status, run.OutputDir)
	}
	return nil
}

// resolveCategory finds a category by id, slug or name.
func (r *Runner) resolveCategory(ctx context.Context, ref string) (models.Category, error) {
	categories, err := r.courses.Categories(ctx)
	if err != nil {
		return models.Category{}, err
	}

	category, ok := catalog.FindCategory(categories, ref)
	if !ok {
		return models.Category{}, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, ref)
	}
	return category, nil
}
