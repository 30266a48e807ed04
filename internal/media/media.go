// package media prepares cover and spot images for upload
package media

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
)

// DefaultMaxWidth is used when no width limit is configured.
const DefaultMaxWidth = 1600

// MaxFileSize is the largest file Prepare will read.
const MaxFileSize = 20 << 20

// allowed maps accepted content types to the imaging format used to re-encode them.
// WebP has no encoder in imaging and is uploaded as-is.
var allowed = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
	"image/webp": -1,
}

// Upload is an image ready for [services.FileAPI.Upload].
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	Resized     bool
}

// Body wraps the upload as the multipart "file" field.
func (u *Upload) Body() services.MultipartBody {
	return services.MultipartBody{
		FieldName:   "file",
		FileName:    u.FileName,
		ContentType: u.ContentType,
		Data:        u.Data,
	}
}

// Prepare reads the image at path, checks its content type and downsizes it to maxWidth.
func Prepare(path string, maxWidth int) (*Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is larger than %d MB", shared.ErrUnsupportedMedia, filepath.Base(path), MaxFileSize>>20)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return PrepareBytes(filepath.Base(path), data, maxWidth)
}

// PrepareBytes is [Prepare] for in-memory data.
func PrepareBytes(name string, data []byte, maxWidth int) (*Upload, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	mime := mimetype.Detect(data)
	contentType := strings.SplitN(mime.String(), ";", 2)[0]
	format, ok := allowed[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", shared.ErrUnsupportedMedia, name, contentType)
	}

	upload := &Upload{
		FileName:    withExtension(name, mime.Extension()),
		ContentType: contentType,
		Data:        data,
	}
	if format < 0 {
		return upload, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", shared.ErrUnsupportedMedia, name, err)
	}

	bounds := img.Bounds()
	upload.Width, upload.Height = bounds.Dx(), bounds.Dy()
	if upload.Width <= maxWidth {
		return upload, nil
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	encoded, err := encode(resized, format)
	if err != nil {
		return nil, err
	}

	upload.Data = encoded
	upload.Width, upload.Height = resized.Bounds().Dx(), resized.Bounds().Dy()
	upload.Resized = true
	return upload, nil
}

func encode(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// withExtension makes the file name agree with the detected type.
func withExtension(name, ext string) string {
	if ext == "" || strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	if ext == ".jpg" && strings.EqualFold(filepath.Ext(name), ".jpeg") {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
