// Package backend talks to the graph analysis and sonification service.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is where the sonification service listens during development.
const DefaultBaseURL = "http://localhost:8000"

// ErrMissingAudioFile is returned when a successful upload response does not
// name the generated audio file.
var ErrMissingAudioFile = errors.New("response has no audio_file")

// StatusError reports a non-success HTTP response from the service.
type StatusError struct {
	Op     string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Code)
	}

	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Code, e.Detail)
}

// Response is the parsed result of one upload.
type Response struct {
	AudioFile string
	// Analysis is nil when the service returned no usable analysis record.
	Analysis *analysis.Result
}

// Client uploads graph images and resolves the generated audio.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Upload sends img as the multipart field "file" and parses the response.
// Exactly one request is made; there are no retries.
func (c *Client) Upload(ctx context.Context, img *Image) (*Response, error) {
	if img == nil {
		return nil, errors.New("image cannot be nil")
	}

	body, contentType, err := multipartBody(img)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath("upload").String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	slog.Debug("uploading graph image", "name", img.Name, "bytes", len(img.Data), "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: "upload", Code: resp.StatusCode, Detail: errorDetail(payload)}
	}

	return parseUploadResponse(payload)
}

// AudioURL composes the download location for an audio file identifier.
func (c *Client) AudioURL(audioFile string) analysis.AudioReference {
	if audioFile == "" {
		return ""
	}

	return analysis.AudioReference(c.baseURL.JoinPath("download", audioFile).String())
}

// Download fetches the audio asset behind ref.
func (c *Client) Download(ctx context.Context, ref analysis.AudioReference) ([]byte, error) {
	if ref.IsZero() {
		return nil, errors.New("no audio reference")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Op: "download", Code: resp.StatusCode, Detail: errorDetail(data)}
	}

	return data, nil
}

func multipartBody(img *Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, img.Name))
	header.Set("Content-Type", img.MIMEType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}

	if _, err := part.Write(img.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write form part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

func parseUploadResponse(payload []byte) (*Response, error) {
	if !gjson.ValidBytes(payload) {
		return nil, errors.New("upload response is not valid JSON")
	}

	audioFile := strings.TrimSpace(gjson.GetBytes(payload, "audio_file").String())
	if audioFile == "" {
		return nil, ErrMissingAudioFile
	}

	resp := &Response{AudioFile: audioFile}

	if res, ok := analysis.FromJSON(gjson.GetBytes(payload, "analysis")); ok {
		resp.Analysis = &res
	} else {
		slog.Debug("upload response has no usable analysis")
	}

	return resp, nil
}

const maxDetailRunes = 200

// errorDetail pulls FastAPI-style {"detail": "..."} messages out of error bodies.
func errorDetail(payload []byte) string {
	if gjson.ValidBytes(payload) {
		if d := gjson.GetBytes(payload, "detail"); d.Exists() {
			return d.String()
		}
	}

	s := strings.TrimSpace(string(payload))
	if r := []rune(s); len(r) > maxDetailRunes {
		s = string(r[:maxDetailRunes])
	}

	return s
}
