// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func draftFlag() cli.Flag {
	return &cli.StringFlag{Name: "draft", Usage: "Draft id or sequence number (default: most recent)"}
}

func spotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Spot title"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Spot description"},
		&cli.FloatFlag{Name: "lat", Usage: "Latitude"},
		&cli.FloatFlag{Name: "lng", Usage: "Longitude"},
		&cli.IntFlag{Name: "stay", Usage: "Stay time in minutes"},
		&cli.IntFlag{Name: "price", Usage: "Price in won"},
		&cli.StringSliceFlag{Name: "image", Usage: "Image URL (repeatable)"},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the bundled template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{Name: "base-url", Usage: "Backend base URL"},
					&cli.StringFlag{Name: "kakao-client-id", Usage: "Kakao REST API key"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{Name: "status", Usage: "Show applied migrations instead of migrating"},
					&cli.BoolFlag{Name: "rollback", Usage: "Roll back the most recent migration"},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles sign-in, sign-up and session management
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (prompted when omitted)"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Create an account; a verification code is mailed afterwards",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password"},
					&cli.StringFlag{Name: "nickname", Aliases: []string{"n"}, Usage: "Public nickname"},
				},
				Action: r.AuthSignup,
			},
			{
				Name:  "verify",
				Usage: "Confirm the emailed verification code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
					&cli.StringFlag{Name: "code", Usage: "Verification code"},
				},
				Action: r.AuthVerify,
			},
			{
				Name:  "kakao",
				Usage: "Sign in with Kakao in the browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-browser", Usage: "Print the login URL instead of opening it"},
					&cli.DurationFlag{Name: "timeout", Usage: "How long to wait for the redirect", Value: defaultCallbackTimeout},
				},
				Action: r.AuthKakao,
			},
			{
				Name:  "nickname",
				Usage: "Set the nickname for a new social account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "nickname"},
				},
				Action: r.AuthNickname,
			},
			{
				Name:  "token",
				Usage: "Use a token copied from the browser (raw or a 'Copy as cURL' file)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Usage: "Bearer token"},
					&cli.StringFlag{Name: "curl-file", Usage: "Path to a file holding a cURL command"},
				},
				Action: r.AuthToken,
			},
			{
				Name:   "logout",
				Usage:  "Forget the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// profileCommand handles the signed-in user's profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  jsonFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:  "edit",
				Usage: "Update profile fields",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "nickname", Usage: "Nickname"},
					&cli.StringFlag{Name: "display-name", Usage: "Display name"},
					&cli.StringFlag{Name: "bio", Usage: "Short bio"},
					&cli.StringFlag{Name: "avatar", Usage: "Avatar URL, or a local image to upload"},
				},
				Action: r.ProfileEdit,
			},
		},
	}
}

// courseCommand handles browsing and managing published courses
func courseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "course",
		Aliases: []string{"courses", "c"},
		Usage:   "Browse and manage courses",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Search courses",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Search text"},
					&cli.StringFlag{Name: "category", Usage: "Category id or slug"},
					&cli.StringFlag{Name: "region", Usage: "Region code"},
					&cli.IntFlag{Name: "max-cost", Usage: "Maximum estimated cost"},
					&cli.StringFlag{Name: "sort", Usage: "Sort order, e.g. likes or recent"},
					&cli.IntFlag{Name: "page", Usage: "Zero-based page number"},
					&cli.IntFlag{Name: "size", Usage: "Page size", Value: 20},
					&cli.BoolFlag{Name: "all", Usage: "Walk every page"},
				}, jsonFlags()...),
				Action: r.CourseList,
			},
			{
				Name:  "show",
				Usage: "Show a course with its spots",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "recommend", Usage: "Also list related courses"},
				}, jsonFlags()...),
				Action: r.CourseShow,
			},
			{
				Name:  "like",
				Usage: "Toggle your like on a course",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.CourseLike,
			},
			{
				Name:  "delete",
				Usage: "Delete a course you created",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmation"},
				},
				Action: r.CourseDelete,
			},
			{
				Name:  "export",
				Usage: "Export courses to files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "ids", Usage: "Course ids (repeatable or comma separated)"},
					&cli.StringFlag{Name: "q", Usage: "Export every course matching this search instead of --ids"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, csv, markdown or text"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent writers"},
					&cli.BoolFlag{Name: "no-cover", Usage: "Skip downloading cover images"},
				},
				Action: r.CourseExport,
			},
			{
				Name:   "exports",
				Usage:  "List recent export runs",
				Flags:  append([]cli.Flag{&cli.IntFlag{Name: "limit", Value: 10}}, jsonFlags()...),
				Action: r.CourseExports,
			},
		},
	}
}

// draftCommand handles local course drafts and publishing them
func draftCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: "Create and edit courses locally before publishing",
		Commands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Start a new draft",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Course title"},
					&cli.StringFlag{Name: "summary", Usage: "Course summary"},
				},
				Action: r.DraftNew,
			},
			{
				Name:  "load",
				Usage: "Start a draft that edits a published course",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.DraftLoad,
			},
			{
				Name:  "list",
				Usage: "List saved drafts",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Filter by title"},
				}, jsonFlags()...),
				Action: r.DraftList,
			},
			{
				Name:   "show",
				Usage:  "Show a draft",
				Flags:  append([]cli.Flag{draftFlag()}, jsonFlags()...),
				Action: r.DraftShow,
			},
			{
				Name:  "set",
				Usage: "Set course fields",
				Flags: []cli.Flag{
					draftFlag(),
					&cli.StringFlag{Name: "title", Usage: "Course title"},
					&cli.StringFlag{Name: "summary", Usage: "Course summary"},
					&cli.StringFlag{Name: "category", Usage: "Category id or slug"},
					&cli.StringFlag{Name: "region", Usage: "Major region code"},
					&cli.StringFlag{Name: "sub-region", Usage: "Sub-region code"},
					&cli.StringFlag{Name: "cover", Usage: "Cover image URL, or a local image to upload"},
					&cli.StringSliceFlag{Name: "tag", Usage: "Add a tag (repeatable)"},
					&cli.StringSliceFlag{Name: "untag", Usage: "Remove a tag (repeatable)"},
				},
				Action: r.DraftSet,
			},
			{
				Name:  "spot",
				Usage: "Edit the draft's spots",
				Commands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Append a spot",
						Flags:  append([]cli.Flag{draftFlag()}, spotFlags()...),
						Action: r.DraftSpotAdd,
					},
					{
						Name:      "edit",
						Usage:     "Change fields of a spot",
						Arguments: []cli.Argument{&cli.StringArg{Name: "order"}},
						Flags:     append([]cli.Flag{draftFlag()}, spotFlags()...),
						Action:    r.DraftSpotEdit,
					},
					{
						Name:      "rm",
						Usage:     "Delete a spot",
						Arguments: []cli.Argument{&cli.StringArg{Name: "order"}},
						Flags:     []cli.Flag{draftFlag()},
						Action:    r.DraftSpotRemove,
					},
					{
						Name:      "up",
						Usage:     "Move a spot one place earlier",
						Arguments: []cli.Argument{&cli.StringArg{Name: "order"}},
						Flags:     []cli.Flag{draftFlag()},
						Action:    r.DraftSpotUp,
					},
					{
						Name:      "down",
						Usage:     "Move a spot one place later",
						Arguments: []cli.Argument{&cli.StringArg{Name: "order"}},
						Flags:     []cli.Flag{draftFlag()},
						Action:    r.DraftSpotDown,
					},
				},
			},
			{
				Name:  "submit",
				Usage: "Validate and publish the draft",
				Flags: []cli.Flag{
					draftFlag(),
					&cli.BoolFlag{Name: "keep", Usage: "Keep the local draft after publishing"},
				},
				Action: r.DraftSubmit,
			},
			{
				Name:   "discard",
				Usage:  "Delete a local draft",
				Flags:  []cli.Flag{draftFlag()},
				Action: r.DraftDiscard,
			},
		},
	}
}

// catalogCommand lists categories and regions
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Categories and regions",
		Commands: []*cli.Command{
			{
				Name:  "categories",
				Usage: "List course categories",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Include hidden categories"},
				}, jsonFlags()...),
				Action: r.CatalogCategories,
			},
			{
				Name:  "regions",
				Usage: "List regions, or the sub-regions of one region",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "major"},
				},
				Flags:  jsonFlags(),
				Action: r.CatalogRegions,
			},
		},
	}
}

// uploadCommand uploads an image and prints its URL
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload an image and print its public URL",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-width", Usage: "Downscale wider images (0 uses the configured width)"},
		},
		Action: r.Upload,
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct backend calls for debugging",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing and editing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive course browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "q", Usage: "Initial search text"},
			&cli.StringFlag{Name: "region", Usage: "Initial region filter"},
		},
		Action: r.TUI,
	}
}
