package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/coursemap/internal/shared"
	tu "github.com/desertthunder/coursemap/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected trailing slash to be trimmed, got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL and Nil Client", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != "http://localhost:8080" {
				t.Errorf("expected default baseURL 'http://localhost:8080', got %s", srv.BaseURL())
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("JSON Body And Bearer Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer abc" {
					t.Errorf("expected bearer header, got %q", got)
				}
				if got := r.Header.Get("Content-Type"); got != "application/json" {
					t.Errorf("expected JSON content type, got %q", got)
				}

				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["title"] != "walk" {
					t.Errorf("expected title 'walk', got %v", body)
				}
				tu.WriteJSON(t, w, http.StatusCreated, map[string]string{"id": "c1"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Do(context.Background(), Request{
				Method: http.MethodPost,
				Path:   "/api/courses",
				JSON:   map[string]string{"title": "walk"},
				Token:  "abc",
			})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
			if resp.JSONData.(map[string]any)["id"] != "c1" {
				t.Errorf("unexpected JSONData %v", resp.JSONData)
			}
		})

		t.Run("No Token Means No Authorization Header", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "" {
					t.Error("expected no Authorization header")
				}
				if r.Header.Get("Content-Type") != "" {
					t.Error("expected no content type without a body")
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			if _, err := NewAPIService(server.URL, nil).Get(context.Background(), "/api/categories", ""); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Empty Query Values Are Dropped", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.RawQuery != "q=cafe" {
					t.Errorf("expected only q in query, got %q", r.URL.RawQuery)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			q := url.Values{"q": {"cafe"}, "region": {""}}
			if _, err := NewAPIService(server.URL, nil).Do(context.Background(), Request{Path: "/api/courses", Query: q}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("No Content", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), Request{Method: http.MethodDelete, Path: "/api/courses/1"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || resp.JSONData != nil || resp.Body != nil {
				t.Errorf("expected null response, got %+v", resp)
			}
		})

		t.Run("Non-JSON Response Is Raw Text", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/health", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if resp.Text() != "plain text response" {
				t.Errorf("expected raw text, got %q", resp.Text())
			}
		})

		t.Run("JSON-Looking Text Keeps Declared Content Type", func(t *testing.T) {
			for _, body := range []string{"123", "true", `"ok"`} {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "text/plain; charset=utf-8")
					w.Write([]byte(body))
				}))

				resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/health", "")
				server.Close()
				if err != nil {
					t.Fatalf("expected no error for %q, got %v", body, err)
				}
				if resp.IsJSON || resp.JSONData != nil {
					t.Errorf("expected %q to stay text, got %+v", body, resp)
				}
				if resp.Text() != body {
					t.Errorf("expected raw text %q, got %q", body, resp.Text())
				}
			}
		})

		t.Run("Missing Content Type Is Sniffed", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
			}, nil)}

			resp, err := NewAPIService("http://example.test", client).Get(context.Background(), "/health", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected body without content type to be sniffed as JSON")
			}
		})

		t.Run("Error Message From Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(t, w, http.StatusBadRequest, map[string]string{"message": "title is required"})
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/courses"})

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Message != "title is required" || apiErr.StatusCode != http.StatusBadRequest {
				t.Errorf("unexpected error %+v", apiErr)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected error to match ErrAPIRequest")
			}
			if resp == nil || resp.StatusCode != http.StatusBadRequest {
				t.Error("expected response to be returned alongside the error")
			}
		})

		t.Run("Error Message Falls Back To Status Text", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("<html>nope</html>"))
			}))
			defer server.Close()

			_, err := NewAPIService(server.URL, nil).Get(context.Background(), "/api/courses/x", "")

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "Not Found" {
				t.Fatalf("expected status text message, got %v", err)
			}
			if !errors.Is(err, shared.ErrNotFound) {
				t.Error("expected 404 to match ErrNotFound")
			}
		})

		t.Run("Unauthorized Matches ErrNotAuthenticated", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tu.WriteJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
			}))
			defer server.Close()

			_, err := NewAPIService(server.URL, nil).Get(context.Background(), "/api/users/me", "old")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if !strings.Contains(err.Error(), "expired") {
				t.Errorf("expected detail message, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test", "")
			if err == nil {
				t.Fatal("expected error for failed request")
			}
			if !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     make(http.Header),
				}, nil),
			}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/test", "")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIService("http://example.com", nil).Do(context.Background(), Request{Method: "BAD METHOD", Path: "/"})
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected request creation error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := NewAPIService(server.URL, nil).Get(ctx, "/test", ""); err == nil {
				t.Fatal("expected error for canceled context")
			}
		})

		t.Run("Multipart Upload", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
					t.Errorf("expected multipart content type, got %q", r.Header.Get("Content-Type"))
				}

				file, header, err := r.FormFile("file")
				if err != nil {
					t.Fatalf("expected form file: %v", err)
				}
				data, _ := io.ReadAll(file)
				if string(data) != "png-bytes" || header.Filename != "cover.png" {
					t.Errorf("unexpected upload %q %q", header.Filename, data)
				}
				if header.Header.Get("Content-Type") != "image/png" {
					t.Errorf("expected part content type image/png, got %q", header.Header.Get("Content-Type"))
				}
				tu.WriteJSON(t, w, http.StatusOK, map[string]string{"url": "https://cdn/x.png"})
			}))
			defer server.Close()

			form := &MultipartBody{FileName: "cover.png", ContentType: "image/png", Data: []byte("png-bytes")}
			resp, err := NewAPIService(server.URL, nil).Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/files/upload", Form: form})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected JSON response")
			}
		})
	})

	t.Run("DoJSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(t, w, http.StatusOK, map[string]any{"liked": true, "likeCount": 7})
		}))
		defer server.Close()

		var out struct {
			Liked     bool `json:"liked"`
			LikeCount int  `json:"likeCount"`
		}
		if err := NewAPIService(server.URL, nil).DoJSON(context.Background(), Request{Path: "/x"}, &out); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !out.Liked || out.LikeCount != 7 {
			t.Errorf("unexpected decode %+v", out)
		}
	})

	t.Run("UploadJSON", func(t *testing.T) {
		t.Run("Posts Valid JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"a":1}` {
					t.Errorf("expected body to pass through, got %s", body)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			if _, err := NewAPIService(server.URL, nil).UploadJSON(context.Background(), "/x", "", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Rejects Invalid JSON", func(t *testing.T) {
			_, err := NewAPIService("http://example.com", nil).UploadJSON(context.Background(), "/x", "", []byte(`{`))
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})
}
