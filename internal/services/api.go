// API client for the course backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/desertthunder/coursemap/internal/shared"
)

// APIService performs HTTP requests against the course backend.
//
// No retries or timeouts are applied; cancellation comes only from the request context.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the backend root this service talks to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// MultipartBody is a single-file multipart form upload.
type MultipartBody struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
	Fields      map[string]string
}

// Request describes one backend call. JSON and Form are mutually exclusive.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	JSON   any
	Form   *MultipartBody
	Token  string
}

// APIResponse represents a raw API response with status and body.
//
// A 204 response has a nil Body and JSONData.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Text returns the body as a string.
func (r *APIResponse) Text() string {
	return string(r.Body)
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap lets [errors.Is] match [shared.ErrAPIRequest] and the status-specific sentinels.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch e.StatusCode {
	case http.StatusNotFound:
		errs = append(errs, shared.ErrNotFound)
	case http.StatusUnauthorized:
		errs = append(errs, shared.ErrNotAuthenticated)
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		errs = append(errs, shared.ErrServiceUnavailable)
	}
	return errs
}

// errorMessage extracts a message from an error body, falling back to the status text.
func errorMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "detail", "error"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				return msg
			}
		}
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return "API request failed"
}

func (a *APIService) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	fullURL := a.baseURL + r.Path
	if len(r.Query) > 0 {
		q := url.Values{}
		for k, vs := range r.Query {
			for _, v := range vs {
				if v != "" {
					q.Add(k, v)
				}
			}
		}
		if encoded := q.Encode(); encoded != "" {
			fullURL += "?" + encoded
		}
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.Form != nil:
		buf, ct, err := encodeMultipart(r.Form)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	return req, nil
}

func encodeMultipart(form *MultipartBody) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range form.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write form field: %w", err)
		}
	}

	field := form.FieldName
	if field == "" {
		field = "file"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, form.FileName))
	if form.ContentType != "" {
		h.Set("Content-Type", form.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(form.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Do performs r and returns the response.
//
// For non-2xx statuses both the response and an [*APIError] are returned.
func (a *APIService) Do(ctx context.Context, r Request) (*APIResponse, error) {
	req, err := a.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	apiResp := &APIResponse{StatusCode: resp.StatusCode, Headers: resp.Header}
	if resp.StatusCode == http.StatusNoContent {
		return apiResp, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	apiResp.Body = body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiResp, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	if len(body) == 0 {
		return apiResp, nil
	}

	// A declared content type is trusted; the body is sniffed only when the header is missing.
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "json") {
		return apiResp, nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err == nil {
		apiResp.IsJSON, apiResp.JSONData = true, data
	} else if contentType != "" {
		return apiResp, fmt.Errorf("%w: invalid JSON response: %w", shared.ErrAPIRequest, err)
	}
	return apiResp, nil
}

// DoJSON performs r and decodes a successful JSON body into out. A nil out discards the body.
func (a *APIService) DoJSON(ctx context.Context, r Request, out any) error {
	resp, err := a.Do(ctx, r)
	if err != nil {
		return err
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
	}
	return nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path, token string) (*APIResponse, error) {
	return a.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token})
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path, token string, data []byte) (*APIResponse, error) {
	var body any
	if len(data) > 0 {
		body = json.RawMessage(data)
	}
	return a.Do(ctx, Request{Method: http.MethodPost, Path: path, JSON: body, Token: token})
}

// UploadJSON uploads JSON data to the specified path.
func (a *APIService) UploadJSON(ctx context.Context, path, token string, jsonData []byte) (*APIResponse, error) {
	if !json.Valid(jsonData) {
		return nil, fmt.Errorf("%w: body is not valid JSON", shared.ErrInvalidInput)
	}
	return a.Post(ctx, path, token, jsonData)
}
