// package formatter exports course details to JSON, CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat accepts a format name or a common alias ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

func coordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// ExportToJSON encodes the full course, spots included.
func ExportToJSON(course *models.CourseDetails) ([]byte, error) {
	return shared.MarshalJSON(course, true)
}

// ExportToCSV writes one row per spot with columns: Order, Title, Lat, Lng, StayMinutes, Price, Description
func ExportToCSV(course *models.CourseDetails) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Order", "Title", "Lat", "Lng", "StayMinutes", "Price", "Description"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, spot := range course.Spots {
		record := []string{
			strconv.Itoa(spot.OrderNo),
			spot.Title,
			coordinate(spot.Lat),
			coordinate(spot.Lng),
			strconv.Itoa(spot.StayMinutes),
			strconv.Itoa(spot.Price),
			spot.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a README with the spot list and totals, with an optional cover image.
func ExportToMarkdown(course *models.CourseDetails, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", course.Title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if course.Summary != "" {
		fmt.Fprintf(&buf, "%s\n\n", course.Summary)
	}

	if course.RegionName != "" {
		fmt.Fprintf(&buf, "**Region**: %s\n", course.RegionName)
	}
	if course.CreatorDisplayName != "" {
		fmt.Fprintf(&buf, "**Creator**: %s\n", course.CreatorDisplayName)
	}
	fmt.Fprintf(&buf, "**Spots**: %d\n", len(course.Spots))
	fmt.Fprintf(&buf, "**Estimated cost**: %s\n", shared.FormatWon(course.TotalCost()))
	fmt.Fprintf(&buf, "**Time on site**: %s\n", shared.FormatMinutes(course.TotalStayMinutes()))
	fmt.Fprintf(&buf, "**Likes**: %d\n", course.LikeCount)
	if len(course.Tags) > 0 {
		tags := make([]string, len(course.Tags))
		for i, tag := range course.Tags {
			tags[i] = "#" + tag
		}
		fmt.Fprintf(&buf, "**Tags**: %s\n", strings.Join(tags, " "))
	}
	buf.WriteString("\n## Spots\n\n")

	for _, spot := range course.Spots {
		fmt.Fprintf(&buf, "%d. **%s** [%s, %s]", spot.OrderNo, spot.Title, shared.FormatMinutes(spot.StayMinutes), shared.FormatWon(spot.Price))
		if c, ok := spot.Coordinate(); ok {
			fmt.Fprintf(&buf, " (%.5f, %.5f)", c.Lat, c.Lng)
		}
		buf.WriteString("\n")
		if spot.Description != "" {
			fmt.Fprintf(&buf, "   %s\n", spot.Description)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders the course as plain text.
func ExportToText(course *models.CourseDetails) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Course: %s\n", course.Title)
	if course.Summary != "" {
		fmt.Fprintf(&buf, "Summary: %s\n", course.Summary)
	}
	if course.RegionName != "" {
		fmt.Fprintf(&buf, "Region: %s\n", course.RegionName)
	}
	fmt.Fprintf(&buf, "Spots: %d\n", len(course.Spots))
	fmt.Fprintf(&buf, "Total: %s, %s\n\n", shared.FormatWon(course.TotalCost()), shared.FormatMinutes(course.TotalStayMinutes()))

	for _, spot := range course.Spots {
		fmt.Fprintf(&buf, "%d. %s\n", spot.OrderNo, spot.Title)
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image and returns the raw bytes.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON encodes the course without its spots.
func ToMetadataJSON(course *models.CourseDetails) ([]byte, error) {
	meta := *course
	meta.Spots = nil
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SpotsFile    string
	MetadataFile string
}

// WriteCSVExport creates {base}_spots.csv and {base}_metadata.json. base defaults to course-{id}.
func WriteCSVExport(course *models.CourseDetails, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "course-" + course.ID
	}

	csvData, err := ExportToCSV(course)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	spotsFile := baseFilepath + "_spots.csv"
	if err := os.WriteFile(spotsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(course)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{SpotsFile: spotsFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	Warnings   []string
}

// WriteMarkdownExport writes {dir}/README.md and, when image is non-empty, {dir}/cover.jpg.
//
// A cover that cannot be saved is reported in Warnings; the README is still written.
func WriteMarkdownExport(course *models.CourseDetails, outputDir string, image []byte) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "course-" + course.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var coverImageFilename string
	if len(image) > 0 {
		coverImagePath := filepath.Join(outputDir, "cover.jpg")
		if err := os.WriteFile(coverImagePath, image, 0644); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to save cover image: %v", err))
		} else {
			coverImageFilename = "cover.jpg"
			result.CoverImage = coverImagePath
			result.Files = append(result.Files, coverImagePath)
		}
	}

	mdData, err := ExportToMarkdown(course, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes the text rendering, defaulting to course-{id}.txt.
func WriteTextExport(course *models.CourseDetails, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("course-%s.txt", course.ID)
	}

	textData, err := ExportToText(course)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the JSON rendering, defaulting to course-{id}.json.
func WriteJSONExport(course *models.CourseDetails, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("course-%s.json", course.ID)
	}

	data, err := ExportToJSON(course)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// Write exports course into dir in the given format and returns the created files.
// cover is only used by the Markdown format.
func Write(format Format, course *models.CourseDetails, dir string, cover []byte) ([]string, error) {
	base := filepath.Join(dir, "course-"+course.ID)

	switch format {
	case FormatJSON:
		path, err := WriteJSONExport(course, base+".json")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatCSV:
		res, err := WriteCSVExport(course, base)
		if err != nil {
			return nil, err
		}
		return []string{res.SpotsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		res, err := WriteMarkdownExport(course, base, cover)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	case FormatText:
		path, err := WriteTextExport(course, base+".txt")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
