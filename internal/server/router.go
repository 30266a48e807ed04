package server

import (
	"net/http"
	"slices"
)

// BasicRouter is the [Router] behind the local callback server.
type BasicRouter struct {
	mux   *http.ServeMux
	chain []Middleware
}

func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. The first one added sees the request first.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handle serves path for a single method. GET routes also answer HEAD, which some browsers send
// before following a redirect.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	allowed := []string{method}
	if method == http.MethodGet {
		allowed = append(allowed, http.MethodHead)
	}

	guarded := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !slices.Contains(allowed, req.Method) {
			w.Header().Set("Allow", method)
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, req)
	})
	r.mux.Handle(path, r.Apply(guarded))
}

// Handler mounts every route a [Handler] reports as a GET route.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(http.MethodGet, route, handler)
	}
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps h in the middleware chain.
func (r *BasicRouter) Apply(h http.Handler) http.Handler {
	for i := len(r.chain) - 1; i >= 0; i-- {
		h = r.chain[i](h)
	}
	return h
}
