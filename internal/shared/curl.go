// Utilities for importing a browser session from a copied cURL command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderPattern = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookiePattern = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
	curlURLPattern    = regexp.MustCompile(`(?:^|\s)'?(https?://[^\s']+)'?`)
)

// tokenCookieNames are cookie keys the web front-end has been seen to carry the access token in.
var tokenCookieNames = []string{"accessToken", "access_token", "token"}

// CurlCapture holds what was parsed out of a "Copy as cURL" command from browser devtools.
type CurlCapture struct {
	URL     string
	Headers http.Header
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and parses it.
func ParseCurlFile(path string) (*CurlCapture, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string, extracting URL, headers and cookies.
func ParseCurlCommand(data []byte) (*CurlCapture, error) {
	cmd := strings.ReplaceAll(string(data), "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	capture := &CurlCapture{Headers: make(http.Header)}

	if m := curlURLPattern.FindStringSubmatch(cmd); m != nil {
		capture.URL = m[1]
	}

	for _, m := range curlHeaderPattern.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstNonEmpty(m[1], m[2]), ":")
		if !ok {
			continue
		}

		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if capture.Cookie == "" {
				capture.Cookie = value
			}
			continue
		}
		capture.Headers.Add(key, value)
	}

	if m := curlCookiePattern.FindStringSubmatch(cmd); m != nil {
		capture.Cookie = firstNonEmpty(m[1], m[2])
	}

	if len(capture.Headers) == 0 && capture.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return capture, nil
}

// BearerToken returns the access token carried by the capture, looking at the Authorization header first and
// then at well-known cookie names.
func (c *CurlCapture) BearerToken() (string, error) {
	if auth := c.Headers.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), nil
		}
	}

	if c.Cookie != "" {
		cookies, err := http.ParseCookie(c.Cookie)
		if err == nil {
			for _, name := range tokenCookieNames {
				for _, ck := range cookies {
					if ck.Name == name && ck.Value != "" {
						return ck.Value, nil
					}
				}
			}
		}
	}
	return "", fmt.Errorf("%w: no bearer token in curl command", ErrMissingCredentials)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
