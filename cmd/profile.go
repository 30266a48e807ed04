package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the signed-in user's profile.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.auth.Profile(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}
	return r.writeProfile(profile)
}

// ProfileEdit changes the given profile fields. A local --avatar file is uploaded first.
func (r *Runner) ProfileEdit(ctx context.Context, cmd *cli.Command) error {
	update := models.ProfileUpdate{
		Nickname:    cmd.String("nickname"),
		DisplayName: cmd.String("display-name"),
		Bio:         cmd.String("bio"),
	}
	if avatar := cmd.String("avatar"); avatar != "" {
		url, err := r.resolveImage(ctx, avatar)
		if err != nil {
			return err
		}
		update.AvatarURL = url
	}

	if update.IsEmpty() {
		return fmt.Errorf("%w: nothing to change, pass at least one field", shared.ErrMissingArgument)
	}

	profile, err := r.auth.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}

	r.writePlain("✓ Profile updated\n")
	return r.writeProfile(profile)
}

func (r *Runner) writeProfile(p *models.UserProfile) error {
	name := p.Nickname
	if p.DisplayName != "" {
		name = fmt.Sprintf("%s (%s)", p.DisplayName, p.Nickname)
	}
	r.writePlainHeader(name)
	if p.Email != "" {
		r.writePlain("Email: %s\n", p.Email)
	}
	if p.Bio != "" {
		r.writePlain("Bio: %s\n", p.Bio)
	}
	if p.AvatarURL != "" {
		r.writePlain("Avatar: %s\n", p.AvatarURL)
	}
	return r.writePlain("Courses: %d • Likes received: %d\n", p.CourseCount, p.LikeCount)
}
