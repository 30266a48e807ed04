// Kakao OAuth configuration
package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/coursemap/internal/shared"
	"golang.org/x/oauth2"
)

const (
	kakaoAuthURL  = "https://kauth.kakao.com/oauth/authorize"
	kakaoTokenURL = "https://kauth.kakao.com/oauth/token"
)

// KakaoService builds Kakao login URLs.
//
// Token exchange is done by the backend; the client only forwards the authorization code.
type KakaoService struct {
	config      *oauth2.Config
	backendBase string
}

// NewKakaoService creates a KakaoService from configuration.
func NewKakaoService(cfg shared.KakaoConfig, backendBase string) (*KakaoService, error) {
	if !cfg.BackendFlow && cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: kakao client_id", shared.ErrMissingCredentials)
	}

	redirect := cfg.RedirectURI
	if redirect == "" {
		redirect = "http://127.0.0.1:3000/login/oauth2/code/kakao"
	}

	return &KakaoService{
		config: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: redirect,
			Endpoint: oauth2.Endpoint{
				AuthURL:  kakaoAuthURL,
				TokenURL: kakaoTokenURL,
			},
		},
		backendBase: strings.TrimRight(backendBase, "/"),
	}, nil
}

// RedirectURI returns the configured callback the authorization code is sent to.
func (k *KakaoService) RedirectURI() string {
	return k.config.RedirectURL
}

// AuthCodeURL returns the Kakao consent URL carrying state.
func (k *KakaoService) AuthCodeURL(state string) string {
	return k.config.AuthCodeURL(state)
}

// BackendAuthorizeURL returns the backend-driven login entry. The backend completes the exchange and
// redirects to redirectTo with a ?token= query.
func (k *KakaoService) BackendAuthorizeURL(redirectTo string) string {
	u := k.backendBase + "/oauth2/authorization/kakao"
	if redirectTo == "" {
		return u
	}
	return u + "?" + url.Values{"redirect_uri": {redirectTo}}.Encode()
}
