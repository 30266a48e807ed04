package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/coursemap/internal/formatter"
	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

const ManifestFile = "export_manifest.json"

// BulkExportOpts contains configuration for bulk course exports.
type BulkExportOpts struct {
	Format     formatter.Format                                        // Export format (default: markdown)
	OutputDir  string                                                  // Base output directory (default: course_export_{epoch})
	NumWorkers int                                                     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64                                                 // Detail requests per second (default: 5)
	FetchCover func(ctx context.Context, url string) ([]byte, error) // Optional cover downloader for markdown
}

// CourseExportJob is a fetched course waiting to be written.
type CourseExportJob struct {
	Index  int
	Course *models.CourseDetails
}

// CourseExportResult is the outcome for one course.
type CourseExportResult struct {
	CourseID string   `json:"id"`
	Title    string   `json:"title"`
	Success  bool     `json:"success"`
	Files    []string `json:"files,omitempty"`
	Error    error    `json:"-"`
	ErrorMsg string   `json:"error,omitempty"`
	index    int
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	RunID             string               `json:"run_id,omitempty"`
	Format            formatter.Format     `json:"format"`
	OutputDirectory   string               `json:"output_dir"`
	TotalCourses      int                  `json:"total"`
	SuccessfulExports int                  `json:"succeeded"`
	FailedExports     int                  `json:"failed"`
	Results           []CourseExportResult `json:"courses"`
	CreatedAt         time.Time            `json:"created_at"`
	ManifestPath      string               `json:"-"`
}

// BulkExport exports courses concurrently with rate-limited fetching and progress tracking.
//
// A single producer fetches course details through a rate limiter and feeds a worker pool that writes
// files. Failures are recorded per course and never abort the run. Results keep the order of ids.
func (e *CourseEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.courses == nil {
		return nil, fmt.Errorf("%w: course service not initialized", shared.ErrServiceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no course ids", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("course_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		TotalCourses:    len(ids),
		Results:         make([]CourseExportResult, 0, len(ids)),
		CreatedAt:       time.Now(),
	}

	run := &models.ExportRun{Format: string(opts.Format), OutputDir: opts.OutputDir, Total: len(ids)}
	if e.runs != nil {
		if err := e.runs.Start(run); err != nil {
			e.logger.Warn("failed to record export run", "error", err)
		} else {
			result.RunID = run.RunID
		}
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan CourseExportJob, len(ids))
	results := make(chan CourseExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				for j := i; j < len(ids); j++ {
					results <- CourseExportResult{CourseID: ids[j], Title: ids[j], Error: err, index: j}
				}
				return
			}

			sendProgress(prog, fetchDetailsUpdate(i+1, len(ids), id))
			course, err := e.courses.Get(ctx, id)
			if err != nil {
				results <- CourseExportResult{
					CourseID: id,
					Title:    fmt.Sprintf("Unknown (%s)", id),
					Error:    fmt.Errorf("failed to fetch course: %w", err),
					index:    i,
				}
				continue
			}

			jobs <- CourseExportJob{Index: i, Course: course}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]CourseExportResult, len(ids))
	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMsg = res.Error.Error()
		}
		ordered[res.index] = res

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.Title, res.Error))
		}
	}
	result.Results = append(result.Results, ordered...)

	run.Succeeded, run.Failed = result.SuccessfulExports, result.FailedExports
	if e.runs != nil && run.RunID != "" {
		if err := e.runs.Finish(run); err != nil {
			e.logger.Warn("failed to finish export run", "error", err)
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes courses from the jobs channel.
func (e *CourseEngine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan CourseExportJob, results chan<- CourseExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- CourseExportResult{CourseID: job.Course.ID, Title: job.Course.Title, Error: err, index: job.Index}
			continue
		}
		results <- e.exportCourse(ctx, job, opts)
	}
}

func (e *CourseEngine) exportCourse(ctx context.Context, j CourseExportJob, opts BulkExportOpts) CourseExportResult {
	result := CourseExportResult{
		CourseID: j.Course.ID,
		Title:    j.Course.Title,
		Files:    []string{},
		index:    j.Index,
	}

	var cover []byte
	if opts.Format == formatter.FormatMarkdown && opts.FetchCover != nil && j.Course.CoverImageURL != "" {
		data, err := opts.FetchCover(ctx, j.Course.CoverImageURL)
		if err != nil {
			e.logger.Warn("failed to download cover", "course", j.Course.ID, "error", err)
		} else {
			cover = data
		}
	}

	files, err := formatter.Write(opts.Format, j.Course, opts.OutputDir, cover)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	result.Files = files
	result.Success = true
	return result
}

// writeManifest writes the export summary as pretty JSON.
func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
