package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/coursemap/internal/models"
	"github.com/desertthunder/coursemap/internal/server"
	"github.com/desertthunder/coursemap/internal/services"
	"github.com/desertthunder/coursemap/internal/shared"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

const defaultCallbackTimeout = 3 * time.Minute

// AuthLogin signs in with email and password and saves the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email, err := r.valueOrPrompt(cmd, "email", "Email")
	if err != nil {
		return err
	}
	password, err := r.valueOrPrompt(cmd, "password", "Password")
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "email", email)
	if err := r.auth.Login(ctx, models.LoginRequest{Email: email, Password: password}); err != nil {
		return err
	}
	return r.writeSignedIn()
}

// AuthSignup creates an account. The backend mails a code to confirm with [Runner.AuthVerify].
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	email, err := r.valueOrPrompt(cmd, "email", "Email")
	if err != nil {
		return err
	}
	password, err := r.valueOrPrompt(cmd, "password", "Password")
	if err != nil {
		return err
	}
	nickname, err := r.valueOrPrompt(cmd, "nickname", "Nickname")
	if err != nil {
		return err
	}

	message, err := r.auth.Signup(ctx, models.SignupRequest{
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
		Nickname:        nickname,
	})
	if err != nil {
		return err
	}

	if message == "" {
		message = "Account created"
	}
	r.writePlain("✓ %s\n", message)
	return r.writePlain("Confirm your email with: cmap auth verify --email %s --code <code>\n", email)
}

// AuthVerify confirms the emailed verification code.
func (r *Runner) AuthVerify(ctx context.Context, cmd *cli.Command) error {
	email, err := r.valueOrPrompt(cmd, "email", "Email")
	if err != nil {
		return err
	}
	code, err := r.valueOrPrompt(cmd, "code", "Code")
	if err != nil {
		return err
	}

	message, err := r.auth.VerifyEmail(ctx, email, code)
	if err != nil {
		return err
	}
	if message == "" {
		message = "Email verified"
	}
	return r.writePlain("✓ %s\nSign in with: cmap auth login --email %s\n", message, email)
}

// AuthKakao runs the Kakao login in the browser and waits for the redirect on the local callback server.
//
// In the backend flow the backend finishes the exchange and redirects with ?token=; otherwise Kakao redirects
// with ?code=, which is forwarded to the backend.
func (r *Runner) AuthKakao(ctx context.Context, cmd *cli.Command) error {
	kakao, err := services.NewKakaoService(r.config.Credentials.Kakao, r.api.BaseURL())
	if err != nil {
		return err
	}

	state := uuid.NewString()
	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	local, err := server.Start(r.config.Server.Addr(), router, r.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	defer local.Shutdown()

	authURL := kakao.AuthCodeURL(state)
	if r.config.Credentials.Kakao.BackendFlow {
		authURL = kakao.BackendAuthorizeURL("http://" + local.Addr() + server.TokenRedirectPath)
	}

	r.writePlain("Open this URL to sign in with Kakao:\n\n  %s\n\n", authURL)
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultCallbackTimeout
	}

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-local.Errors():
		return fmt.Errorf("%w: callback server: %w", shared.ErrServiceUnavailable, err)
	case <-time.After(timeout):
		return fmt.Errorf("%w: no redirect within %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := result.Error(); err != nil {
		return err
	}

	if result.Token != "" {
		if err := r.auth.SetToken(result.Token); err != nil {
			return err
		}
	} else if err := r.auth.KakaoLogin(ctx, result.Code, kakao.RedirectURI()); err != nil {
		return err
	}
	return r.writeSignedIn()
}

// AuthNickname sets the nickname, required once after a first social login.
func (r *Runner) AuthNickname(ctx context.Context, cmd *cli.Command) error {
	nickname := cmd.StringArg("nickname")
	if nickname == "" {
		var err error
		if nickname, err = r.prompt("Nickname", ""); err != nil {
			return err
		}
	}
	if nickname == "" {
		return fmt.Errorf("%w: nickname", shared.ErrMissingArgument)
	}

	if err := r.auth.SetNickname(ctx, nickname); err != nil {
		return err
	}
	return r.writePlain("✓ Nickname set to %s\n", nickname)
}

// AuthToken adopts a token captured from a signed-in browser session.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	token, curlFile := cmd.String("token"), cmd.String("curl-file")

	if token == "" && curlFile == "" {
		return fmt.Errorf("%w: either --token or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if token != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --token and --curl-file", shared.ErrInvalidArgument)
	}

	if curlFile != "" {
		capture, err := shared.ParseCurlFile(curlFile)
		if err != nil {
			return err
		}
		if token, err = capture.BearerToken(); err != nil {
			return err
		}
		r.logger.Info("parsed token from cURL", "file", curlFile)
	}

	if err := r.auth.SetToken(token); err != nil {
		return err
	}
	return r.writeSignedIn()
}

// AuthLogout forgets the saved session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.auth.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the decoded session claims.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session := r.auth.Snapshot()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": session.Authenticated(),
			"claims":        session.Claims,
		}, cmd.Bool("pretty"))
	}

	if !session.Authenticated() {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlain("✓ Signed in\n")
	if c := session.Claims; c != nil {
		if c.Nickname != "" {
			r.writePlain("Nickname: %s\n", c.Nickname)
		} else {
			r.writePlain("Nickname: (not set, run 'cmap auth nickname')\n")
		}
		if c.Email != "" {
			r.writePlain("Email: %s\n", c.Email)
		}
		if len(c.Roles) > 0 {
			r.writePlain("Roles: %v\n", []string(c.Roles))
		}
		if c.ExpiresAt != nil {
			expires := c.ExpiresAt.Time
			if time.Now().After(expires) {
				r.writePlain("Expires: %s (expired)\n", expires.Format(time.RFC3339))
			} else {
				r.writePlain("Expires: %s\n", expires.Format(time.RFC3339))
			}
		}
	}
	return nil
}

func (r *Runner) writeSignedIn() error {
	session := r.auth.Snapshot()
	r.logger.Info("authentication successful")

	if session.Claims == nil || session.Claims.Nickname == "" {
		return r.writePlain("✓ Signed in\nChoose a nickname with: cmap auth nickname <name>\n")
	}
	return r.writePlain("✓ Signed in as %s\n", session.Claims.Nickname)
}
