package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/coursemap/internal/catalog"
	"github.com/desertthunder/coursemap/internal/editor"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/repositories"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/urfave/cli/v3"
)

// openDraft resolves --draft as a draft id or sequence number, falling back to the most recent draft.
func (r *Runner) openDraft(cmd *cli.Command) (*repositories.DraftRepository, *models.DraftRecord, *editor.CourseDraft, error) {
	repo, err := r.drafts()
	if err != nil {
		return nil, nil, nil, err
	}

	var record *models.DraftRecord
	ref := strings.TrimPrefix(cmd.String("draft"), "#")
	switch seq, convErr := strconv.Atoi(ref); {
	case ref == "":
		record, err = repo.Latest()
	case convErr == nil:
		record, err = repo.GetBySequence(seq)
	default:
		record, err = repo.Get(ref)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	d := editor.NewCourseDraft()
	if err := json.Unmarshal(record.Payload, d); err != nil {
		return nil, nil, nil, fmt.Errorf("draft #%d is corrupt: %w", record.Sequence, err)
	}
	return repo, record, d, nil
}

func storeDraft(repo *repositories.DraftRepository, record *models.DraftRecord, d *editor.CourseDraft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	record.DraftID = d.ID
	record.CourseID = d.CourseID
	record.Title = d.Title
	record.Payload = payload
	return repo.Save(record)
}

func draftLabel(record *models.DraftRecord) string {
	title := record.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("#%d %s", record.Sequence, title)
}

// DraftNew starts an empty course draft.
func (r *Runner) DraftNew(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.drafts()
	if err != nil {
		return err
	}

	d := editor.NewCourseDraft()
	d.Title = cmd.String("title")
	d.Summary = cmd.String("summary")

	record := &models.DraftRecord{}
	if err := storeDraft(repo, record, d); err != nil {
		return err
	}

	r.logger.Info("draft created", "id", record.DraftID, "sequence", record.Sequence)
	return r.writePlain("✓ Created draft %s\n", draftLabel(record))
}

// DraftLoad copies a published course into a new draft that updates it on submit.
func (r *Runner) DraftLoad(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: course id", shared.ErrMissingArgument)
	}
	repo, err := r.drafts()
	if err != nil {
		return err
	}

	course, err := r.courses.Get(ctx, id)
	if err != nil {
		return err
	}

	d := editor.DraftFromCourse(course, r.regions)
	record := &models.DraftRecord{}
	if err := storeDraft(repo, record, d); err != nil {
		return err
	}
	return r.writePlain("✓ Loaded course %s into draft %s (%d spots)\n", id, draftLabel(record), d.Spots.Len())
}

// DraftList lists local drafts.
func (r *Runner) DraftList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.drafts()
	if err != nil {
		return err
	}

	records, err := repo.List(map[string]any{"title": cmd.String("title")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type row struct {
			ID       string `json:"id"`
			Sequence int    `json:"sequence"`
			CourseID string `json:"course_id,omitempty"`
			Title    string `json:"title"`
			Spots    int    `json:"spots"`
			Updated  string `json:"updated_at"`
		}
		rows := make([]row, 0, len(records))
		for _, rec := range records {
			rows = append(rows, row{rec.DraftID, rec.Sequence, rec.CourseID, rec.Title, spotCount(rec), rec.Updated.Format(time.RFC3339)})
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		return r.writePlain("No drafts. Start one with 'cmap draft new'\n")
	}

	for _, rec := range records {
		line := fmt.Sprintf("%-24s %d spots  %s", draftLabel(rec), spotCount(rec), rec.Updated.Format("2006-01-02 15:04"))
		if rec.CourseID != "" {
			line += "  (edits " + rec.CourseID + ")"
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

func spotCount(record *models.DraftRecord) int {
	var p struct {
		Spots []json.RawMessage `json:"spots"`
	}
	if err := json.Unmarshal(record.Payload, &p); err != nil {
		return 0
	}
	return len(p.Spots)
}

// DraftShow prints a draft and what still blocks submitting it.
func (r *Runner) DraftShow(ctx context.Context, cmd *cli.Command) error {
	_, record, d, err := r.openDraft(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(d, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Draft " + draftLabel(record))
	if d.CourseID != "" {
		r.writePlain("Edits course: %s\n", d.CourseID)
	}
	r.writePlain("Summary: %s\n", orNone(d.Summary))
	r.writePlain("Category: %s\n", orNone(d.CategoryID))
	if region, err := r.regions.Resolve(d.MajorRegion, d.SubRegion); err == nil {
		r.writePlain("Region: %s (%s)\n", region.Name, region.Code)
	} else {
		r.writePlain("Region: %s\n", orNone(strings.TrimSpace(d.MajorRegion+" "+d.SubRegion)))
	}
	r.writePlain("Cover: %s\n", orNone(d.CoverImageURL))
	if tags := d.Tags(); len(tags) > 0 {
		r.writePlain("Tags: %s\n", strings.Join(tags, ", "))
	}

	r.writePlainln("Spots:")
	for _, s := range d.Spots.Spots() {
		r.writePlain("  %s\n", describeSpot(s))
	}
	if d.Spots.Len() == 0 {
		r.writePlain("  (none)\n")
	}
	r.writePlain("Total: %s • %s\n", shared.FormatWon(d.Spots.TotalCost()), shared.FormatMinutes(d.Spots.TotalStayMinutes()))

	var verr *editor.ValidationError
	if err := r.validator.Validate(d); errors.As(err, &verr) {
		r.writePlainln("Not ready to submit:")
		for _, p := range verr.Problems {
			r.writePlain("  - %s\n", p)
		}
	} else if err == nil {
		r.writePlainln("✓ Ready to submit")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func describeSpot(s models.Spot) string {
	parts := []string{}
	if p, ok := s.Coordinate(); ok {
		parts = append(parts, fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng))
	} else {
		parts = append(parts, "no location")
	}
	if s.StayMinutes > 0 {
		parts = append(parts, shared.FormatMinutes(s.StayMinutes))
	}
	if s.Price > 0 {
		parts = append(parts, shared.FormatWon(s.Price))
	}
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%d. %s [%s]", s.OrderNo, title, strings.Join(parts, ", "))
}

// DraftSet updates course-level fields of a draft.
func (r *Runner) DraftSet(ctx context.Context, cmd *cli.Command) error {
	repo, record, d, err := r.openDraft(cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("title") {
		d.Title = cmd.String("title")
	}
	if cmd.IsSet("summary") {
		d.Summary = cmd.String("summary")
	}
	if ref := cmd.String("category"); ref != "" {
		category, err := r.resolveCategory(ctx, ref)
		if err != nil {
			return err
		}
		d.CategoryID = category.ID
	}

	if cmd.IsSet("region") || cmd.IsSet("sub-region") {
		sel := catalog.NewSelection(r.regions)
		if err := sel.SelectMajor(d.MajorRegion); err != nil {
			r.logger.Debug("stored region no longer exists", "region", d.MajorRegion)
		} else if err := sel.SelectSub(d.SubRegion); err != nil {
			r.logger.Debug("stored sub-region no longer exists", "region", d.SubRegion)
		}

		if cmd.IsSet("region") {
			if err := sel.SelectMajor(cmd.String("region")); err != nil {
				return err
			}
		}
		if cmd.IsSet("sub-region") {
			if err := sel.SelectSub(cmd.String("sub-region")); err != nil {
				return err
			}
		}
		d.MajorRegion, d.SubRegion = sel.Major(), sel.Sub()

		if sel.NeedsSub() {
			names := []string{}
			for _, o := range sel.Options() {
				names = append(names, fmt.Sprintf("%s (%s)", o.Name, o.Code))
			}
			r.writePlain("Choose a sub-region with --sub-region: %s\n", strings.Join(names, ", "))
		}
	}

	if cover := cmd.String("cover"); cover != "" {
		url, err := r.resolveImage(ctx, cover)
		if err != nil {
			return err
		}
		d.CoverImageURL = url
	}

	for _, t := range cmd.StringSlice("tag") {
		d.AddTag(t)
	}
	for _, t := range cmd.StringSlice("untag") {
		if !d.RemoveTag(t) {
			r.logger.Warn("tag not on draft", "tag", t)
		}
	}

	if err := storeDraft(repo, record, d); err != nil {
		return err
	}
	return r.writePlain("✓ Updated draft %s\n", draftLabel(record))
}

// applySpotFlags copies the spot flags that were given onto s.
func applySpotFlags(cmd *cli.Command, s models.Spot) (models.Spot, error) {
	if cmd.IsSet("title") {
		s.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		s.Description = cmd.String("description")
	}

	switch lat, lng := cmd.IsSet("lat"), cmd.IsSet("lng"); {
	case lat && lng:
		s.SetCoordinate(models.LatLng{Lat: cmd.Float("lat"), Lng: cmd.Float("lng")})
	case lat || lng:
		return s, fmt.Errorf("%w: --lat and --lng must be given together", shared.ErrInvalidFlag)
	}

	if cmd.IsSet("stay") {
		if cmd.Int("stay") < 0 {
			return s, fmt.Errorf("%w: --stay cannot be negative", shared.ErrInvalidFlag)
		}
		s.StayMinutes = int(cmd.Int("stay"))
	}
	if cmd.IsSet("price") {
		if cmd.Int("price") < 0 {
			return s, fmt.Errorf("%w: --price cannot be negative", shared.ErrInvalidFlag)
		}
		s.Price = int(cmd.Int("price"))
	}
	if cmd.IsSet("image") {
		s.Images = cmd.StringSlice("image")
	}
	return s, nil
}

func orderArg(cmd *cli.Command) (int, error) {
	raw := cmd.StringArg("order")
	if raw == "" {
		return 0, fmt.Errorf("%w: spot number", shared.ErrMissingArgument)
	}
	order, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: spot number %q", shared.ErrInvalidArgument, raw)
	}
	return order, nil
}

// DraftSpotAdd appends a spot to the draft.
func (r *Runner) DraftSpotAdd(ctx context.Context, cmd *cli.Command) error {
	repo, record, d, err := r.openDraft(cmd)
	if err != nil {
		return err
	}

	s, err := applySpotFlags(cmd, d.Spots.BeginAdd(nil))
	if err != nil {
		d.Spots.Cancel()
		return err
	}
	added, err := d.Spots.Save(s)
	if err != nil {
		return err
	}

	if err := storeDraft(repo, record, d); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s\n", describeSpot(added))
}

// DraftSpotEdit changes the given fields of one spot.
func (r *Runner) DraftSpotEdit(ctx context.Context, cmd *cli.Command) error {
	order, err := orderArg(cmd)
	if err != nil {
		return err
	}
	repo, record, d, err := r.openDraft(cmd)
	if err != nil {
		return err
	}

	current, err := d.Spots.BeginEdit(order)
	if err != nil {
		return err
	}
	s, err := applySpotFlags(cmd, current)
	if err != nil {
		d.Spots.Cancel()
		return err
	}
	saved, err := d.Spots.Save(s)
	if err != nil {
		return err
	}

	if err := storeDraft(repo, record, d); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", describeSpot(saved))
}

// DraftSpotRemove deletes a spot; later spots move up one place.
func (r *Runner) DraftSpotRemove(ctx context.Context, cmd *cli.Command) error {
	return r.changeSpots(cmd, "Removed spot %d", func(l *editor.SpotList, order int) error {
		return l.Delete(order)
	})
}

// DraftSpotUp swaps a spot with the one before it.
func (r *Runner) DraftSpotUp(ctx context.Context, cmd *cli.Command) error {
	return r.changeSpots(cmd, "Moved spot %d up", func(l *editor.SpotList, order int) error {
		return l.MoveUp(order)
	})
}

// DraftSpotDown swaps a spot with the one after it.
func (r *Runner) DraftSpotDown(ctx context.Context, cmd *cli.Command) error {
	return r.changeSpots(cmd, "Moved spot %d down", func(l *editor.SpotList, order int) error {
		return l.MoveDown(order)
	})
}

func (r *Runner) changeSpots(cmd *cli.Command, done string, change func(*editor.SpotList, int) error) error {
	order, err := orderArg(cmd)
	if err != nil {
		return err
	}
	repo, record, d, err := r.openDraft(cmd)
	if err != nil {
		return err
	}

	if err := change(d.Spots, order); err != nil {
		return err
	}
	if err := storeDraft(repo, record, d); err != nil {
		return err
	}

	r.writePlain("✓ "+done+"\n", order)
	for _, s := range d.Spots.Spots() {
		r.writePlain("  %s\n", describeSpot(s))
	}
	return nil
}

// DraftSubmit validates the draft and publishes it, creating or updating the course.
func (r *Runner) DraftSubmit(ctx context.Context, cmd *cli.Command) error {
	repo, record, d, err := r.openDraft(cmd)
	if err != nil {
		return err
	}
	token, err := r.requireToken()
	if err != nil {
		return err
	}

	course, err := r.validator.Submit(ctx, r.courses, token, d)
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		r.writePlain("✗ Draft %s is not ready:\n", draftLabel(record))
		for _, p := range verr.Problems {
			r.writePlain("  - %s\n", p)
		}
		return err
	}
	if err != nil {
		return err
	}

	r.logger.Info("course submitted", "draft", record.DraftID, "course", course.ID)
	if !cmd.Bool("keep") {
		if err := repo.Delete(record.DraftID); err != nil {
			r.logger.Warn("failed to remove submitted draft", "error", err)
		}
	} else if d.CourseID == "" {
		d.CourseID = course.ID
		if err := storeDraft(repo, record, d); err != nil {
			r.logger.Warn("failed to link draft to course", "error", err)
		}
	}

	return r.writePlain("✓ Published %s (%s)\n", course.Title, course.ID)
}

// DraftDiscard deletes a draft.
func (r *Runner) DraftDiscard(ctx context.Context, cmd *cli.Command) error {
	repo, record, _, err := r.openDraft(cmd)
	if err != nil {
		return err
	}
	if err := repo.Delete(record.DraftID); err != nil {
		return err
	}
	return r.writePlain("✓ Discarded draft %s\n", draftLabel(record))
}
