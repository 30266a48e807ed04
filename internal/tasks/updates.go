package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCourses Phase = iota
	FetchDetails
	ExportCourse
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchCourses:
		return "fetch_courses"
	case FetchDetails:
		return "fetch_details"
	case ExportCourse:
		return "export_course"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends without blocking; updates are dropped when nobody is reading.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchPageUpdate(page, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCourses,
		Step:    page + 1,
		Message: fmt.Sprintf("Fetching page %d (%d courses so far)...", page+1, fetched),
	}
}

func fetchDetailsUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching course %s...", step, total, id),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCourse,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCourse,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s...", path),
		Data:    path,
	}
}
