// Package api is the REST client for the waymark backend. It owns the wire
// formats, the CSRF cookie echo, and the multipart image upload.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/waymark-app/waymark/internal/imageutil"
	"github.com/waymark-app/waymark/internal/limits"
	"github.com/waymark-app/waymark/internal/model"

	"github.com/rs/zerolog"
)

const csrfCookieName = "csrftoken"

// Error is a non-2xx backend response. Detail carries the raw server body so
// the user-facing message can include it.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Detail)
}

// Client handles communication with the waymark backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	norm       *imageutil.Normalizer
	log        zerolog.Logger
}

// New creates a new API client. The cookie jar holds the session and CSRF
// cookies the backend sets.
func New(baseURL string, timeout time.Duration, norm *imageutil.Normalizer, log zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		norm: norm,
		log:  log,
	}
}

// csrfToken returns the csrftoken cookie value, or "" when absent.
func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// newRequest builds a request, echoing the CSRF cookie as a header on unsafe
// methods.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		if token := c.csrfToken(); token != "" {
			req.Header.Set("X-CSRFToken", token)
		} else {
			c.log.Warn().Str("path", path).Msg("CSRF token not found in cookies")
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// FetchRoutes loads all routes. Both a bare array and a paginated
// {results: [...]} envelope are accepted; any other shape yields an empty
// list, logged but not raised, since it indicates backend drift rather than
// a user error.
func (c *Client) FetchRoutes(ctx context.Context) ([]model.Route, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/routes/", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var raw []wireRoute
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decoding route list: %w", err)
		}
	} else {
		var envelope struct {
			Results []wireRoute `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Results == nil {
			c.log.Error().Str("body", string(truncateJSON(trimmed))).
				Msg("Unexpected route list response shape, treating as empty")
			return []model.Route{}, nil
		}
		raw = envelope.Results
	}

	routes := make([]model.Route, 0, len(raw))
	for _, wr := range raw {
		routes = append(routes, wr.toModel(c.norm))
	}
	return routes, nil
}

// CreateRoute creates a route with its points. The backend persists and
// echoes points in request order; callers rely on that positional contract
// when uploading images for fresh points.
func (c *Client) CreateRoute(ctx context.Context, payload RoutePayload) (model.Route, error) {
	return c.sendRoute(ctx, http.MethodPost, "/api/routes/", payload)
}

// UpdateRoute replaces the route's fields and point list.
func (c *Client) UpdateRoute(ctx context.Context, id int64, payload RoutePayload) (model.Route, error) {
	return c.sendRoute(ctx, http.MethodPut, fmt.Sprintf("/api/routes/%d/", id), payload)
}

func (c *Client) sendRoute(ctx context.Context, method, path string, payload RoutePayload) (model.Route, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return model.Route{}, fmt.Errorf("encoding route payload: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, bytes.NewReader(encoded))
	if err != nil {
		return model.Route{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return model.Route{}, err
	}

	var wr wireRoute
	if err := json.Unmarshal(body, &wr); err != nil {
		return model.Route{}, fmt.Errorf("decoding route response: %w", err)
	}
	return wr.toModel(c.norm), nil
}

// DeleteRoute deletes a route and all its points.
func (c *Client) DeleteRoute(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/routes/%d/", id), nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// DeleteImage deletes a single persisted point image.
func (c *Client) DeleteImage(ctx context.Context, imageID int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/point-images/%d/", imageID), nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// UploadImages sends inline data-URI images for a point as one multipart
// request with a repeated "images" field. Each data URI is decoded to its
// binary payload; oversized payloads are recompressed to fit the image size
// limit before sending.
func (c *Client) UploadImages(ctx context.Context, pointID int64, dataURIs []string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for i, uri := range dataURIs {
		_, data, err := imageutil.DecodeDataURI(uri)
		if err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}

		if !limits.IsImageSizeValid(len(data)) {
			data, err = imageutil.RecompressJPEG(data, limits.MaxImageSizeBytes())
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
		}

		ext := imageutil.ExtensionForFormat(imageutil.SniffFormat(data))
		part, err := writer.CreateFormFile("images", fmt.Sprintf("image_%d%s", i, ext))
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return fmt.Errorf("failed to write form file: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/points/%d/upload_image/", pointID), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = c.do(req)
	return err
}

func truncateJSON(b []byte) []byte {
	const max = 256
	if len(b) <= max {
		return b
	}
	return b[:max]
}
