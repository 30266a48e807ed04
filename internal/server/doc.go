// Package server runs the short-lived local HTTP server that receives OAuth redirects for the CLI.
//
// # Router
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] wraps [http.ServeMux]
// with method filtering; [Middleware] is applied in reverse order (last added executes first).
//
// # Callbacks
//
// [CallbackHandler] serves the two redirect shapes the backend produces:
//
//   - /oauth2/redirect and /auth/callback carry an issued token in the "token" query parameter. The token
//     is consumed once and the browser is redirected to the same path without it, so the token does not
//     stay in the address bar or history.
//   - /login/oauth2/code/kakao carries a Kakao authorization "code" and the "state" issued with the
//     authorize URL. The state must match before the code is accepted.
//
// The handler accepts exactly one callback. Later callbacks get 400 Bad Request. The outcome is delivered
// once on [CallbackHandler.Result].
package server
