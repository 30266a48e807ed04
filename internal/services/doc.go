// Package services implements typed clients for the course backend.
//
// # API Client
//
// [APIService] is a thin wrapper around [http.Client]. It encodes JSON or multipart bodies, attaches
// "Authorization: Bearer" when a token is given and normalizes failures into [*APIError], whose message
// comes from the response body's message (or detail/error) field with the HTTP status text as fallback.
// A 204 produces an empty response; non-JSON bodies are returned as raw text.
//
// No retries, backoff or default timeout are applied.
//
// # Endpoints
//
//   - [CourseService] : list/search, detail, create, update, delete, like toggle, recommendations, categories
//   - [AuthService] : signup, login, email verification, Kakao code exchange, nickname
//   - [UserService] : profile get and update
//   - [FileService] : multipart upload returning a URL
//
// [KakaoService] builds authorization URLs with [oauth2.Config]; the code itself is exchanged by the backend.
//
// # Error Handling
//
// Errors wrap sentinels from the shared package:
//   - [shared.ErrAPIRequest] : any failed backend call
//   - [shared.ErrNotFound] : 404
//   - [shared.ErrNotAuthenticated] : 401, or a bearer endpoint called without a token
package services
