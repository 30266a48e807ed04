package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/coursemap/internal/media"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/urfave/cli/v3"
)

// Upload sends a local image to the backend and prints its public URL.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: image path", shared.ErrMissingArgument)
	}

	maxWidth := int(cmd.Int("max-width"))
	if maxWidth <= 0 {
		maxWidth = r.config.Editor.ImageMaxWidth
	}

	url, err := r.uploadImage(ctx, path, maxWidth)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", url)
}

// resolveImage returns ref unchanged when it is already a URL and uploads it otherwise.
func (r *Runner) resolveImage(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	return r.uploadImage(ctx, ref, r.config.Editor.ImageMaxWidth)
}

func (r *Runner) uploadImage(ctx context.Context, path string, maxWidth int) (string, error) {
	token, err := r.requireToken()
	if err != nil {
		return "", err
	}

	upload, err := media.Prepare(path, maxWidth)
	if err != nil {
		return "", err
	}
	if upload.Resized {
		r.logger.Info("resized image", "file", upload.FileName, "width", upload.Width, "height", upload.Height)
	}

	url, err := r.files.Upload(ctx, token, upload.Body())
	if err != nil {
		return "", err
	}
	r.logger.Debug("uploaded image", "file", upload.FileName, "url", url)
	return url, nil
}
