// Utilities for lifting credentials out of a browser "Copy as cURL" command.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlURLRe    = regexp.MustCompile(`https?://[^\s'"]+`)
	userPathRe   = regexp.MustCompile(`/users/([^/?\s]+)/`)
)

// CurlRequest holds the pieces of a captured request needed to call authenticated catalog endpoints.
type CurlRequest struct {
	URL     string
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and parses it.
func ParseCurlFile(filepath string) (*CurlRequest, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts the target URL and headers (keys lower-cased) from a cURL command.
func ParseCurlCommand(data []byte) (*CurlRequest, error) {
	cmd := strings.ReplaceAll(string(data), "\\\n", " ")

	req := &CurlRequest{Headers: make(map[string]string)}
	for _, match := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		line := match[1]
		if line == "" {
			line = match[2]
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		req.Headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if loc := curlURLRe.FindString(cmd); loc != "" {
		req.URL = loc
	}

	if len(req.Headers) == 0 && req.URL == "" {
		return nil, fmt.Errorf("%w: no headers or URL found in curl command", ErrInvalidInput)
	}
	return req, nil
}

// BearerToken returns the token of an "authorization: Bearer ..." header, if present.
func (c *CurlRequest) BearerToken() string {
	auth := c.Headers["authorization"]
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserAgent returns the captured user-agent header.
func (c *CurlRequest) UserAgent() string {
	return c.Headers["user-agent"]
}

// UserID returns the account id embedded in a ".../users/{id}/..." URL.
func (c *CurlRequest) UserID() string {
	if m := userPathRe.FindStringSubmatch(c.URL); m != nil {
		return m[1]
	}
	return ""
}
