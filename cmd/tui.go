package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coursemap/internal/formatter"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/repositories"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/desertthunder/coursemap/internal/store"
	"github.com/desertthunder/coursemap/internal/tasks"
	"github.com/desertthunder/coursemap/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive course browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file so they do not interfere with rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/cmap-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	format, err := formatter.ParseFormat(r.config.Export.Format)
	if err != nil {
		r.logger.Warn("invalid export format in config, using markdown", "error", err)
		format = formatter.FormatMarkdown
	}
	outputDir := r.config.Export.OutputDir
	if outputDir != "" {
		outputDir = filepath.Join(outputDir, fmt.Sprintf("course_export_%d", time.Now().Unix()))
	}

	var runs tasks.RunRecorder
	var drafts ui.DraftSaver
	if r.db != nil {
		runs = repositories.NewExportRunRepository(r.db)
		drafts = repositories.NewDraftRepository(r.db)
	}

	deps := ui.Deps{
		Courses:   store.NewCourseStore(r.courses, r.auth, shared.WithLogger(fileLogger, "component", "courses")),
		Tokens:    r.auth,
		API:       r.courses,
		Engine:    tasks.NewCourseEngine(r.courses, runs, shared.WithLogger(fileLogger, "component", "export")),
		Drafts:    drafts,
		Validator: r.validator,
		Regions:   r.regions,
		Query:     models.CourseQuery{Q: cmd.String("q"), Region: cmd.String("region"), Size: 20},
		Map:       r.config.Map,
		Export: tasks.BulkExportOpts{
			Format:     format,
			OutputDir:  outputDir,
			NumWorkers: r.config.Export.Workers,
			RateLimit:  r.config.Export.RateLimit,
			FetchCover: r.fetchCover,
		},
		Logger: fileLogger,
	}

	p := tea.NewProgram(ui.NewModel(ctx, deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
