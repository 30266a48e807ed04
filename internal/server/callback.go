package server

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/coursemap/internal/shared"
)

const (
	TokenRedirectPath = "/oauth2/redirect"
	AuthCallbackPath  = "/auth/callback"
	KakaoCodePath     = "/login/oauth2/code/kakao"
)

// CallbackResult is the outcome of a redirect. Exactly one of Token or Code is set on success.
type CallbackResult struct {
	Token string
	Code  string
	err   error
}

func (c CallbackResult) Error() error {
	return c.err
}

// CallbackHandler receives a single OAuth redirect.
type CallbackHandler struct {
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	mu          sync.Mutex
	callbackHit bool
}

// NewCallbackHandler creates a handler expecting state on the Kakao code redirect.
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{state: state, resultChan: make(chan CallbackResult, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{TokenRedirectPath, AuthCallbackPath, KakaoCodePath}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == KakaoCodePath {
		h.serveCode(w, r)
		return
	}
	h.serveToken(w, r)
}

// claim marks the callback as used and reports whether this request was the first.
func (h *CallbackHandler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.callbackHit {
		return false
	}
	h.callbackHit = true
	return true
}

func (h *CallbackHandler) used() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.callbackHit
}

func (h *CallbackHandler) serveToken(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	token := query.Get("token")

	if token == "" {
		// landing after the token was stripped
		if h.used() {
			renderPage(w, http.StatusOK, "Signed in", "You can close this window and return to the terminal.")
			return
		}
		if !h.claim() {
			http.Error(w, "Callback already processed", http.StatusBadRequest)
			return
		}
		err := fmt.Errorf("%w: redirect carried no token", shared.ErrAuthFailed)
		if msg := query.Get("error"); msg != "" {
			err = fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
		}
		h.Send(CallbackResult{err: err})
		renderPage(w, http.StatusBadRequest, "Sign-in failed", err.Error())
		return
	}

	if !h.claim() {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Token: token})
	http.Redirect(w, r, StripToken(r.URL).String(), http.StatusSeeOther)
}

func (h *CallbackHandler) serveCode(w http.ResponseWriter, r *http.Request) {
	if !h.claim() {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(CallbackResult{err: fmt.Errorf("%w: state mismatch", shared.ErrInvalidState)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Code: code})
	renderPage(w, http.StatusOK, "Authorization received", "You can close this window and return to the terminal.")
}

// Send delivers the result. Only the first call has an effect.
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

// StripToken returns u without its token query parameter.
func StripToken(u *url.URL) *url.URL {
	stripped := *u
	q := stripped.Query()
	q.Del("token")
	stripped.RawQuery = q.Encode()
	stripped.Scheme, stripped.Host = "", ""
	return &stripped
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #FF7A45; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = page.Execute(w, struct{ Title, Message string }{title, message})
}
