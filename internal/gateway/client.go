// Package gateway is the single HTTP access point to the remote highlight
// processing service. It attaches the bearer token when one is stored,
// serializes JSON and multipart bodies, and normalizes every failure into
// *Error. It performs no retries and no caching; recovery is always
// user-initiated.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/RaufunNazin/Highlighter/internal/logging"
	"github.com/RaufunNazin/Highlighter/internal/session"
)

const maxErrorBody = 4096

// TokenSource supplies the current auth token, or "" when unauthenticated.
// The session store satisfies this.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	tokens  TokenSource

	// jsonClient bounds quick JSON calls; pipelineClient has no client-side
	// timeout because the service encodes synchronously and a generation or
	// concatenation request is awaited to completion.
	jsonClient     *http.Client
	pipelineClient *http.Client

	logger *slog.Logger
}

func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:        baseURL,
		tokens:         tokens,
		jsonClient:     &http.Client{Timeout: timeout},
		pipelineClient: &http.Client{},
		logger:         logger,
	}
}

// Login exchanges credentials for a token. Unauthenticated by design.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/login", LoginRequest{Username: username, Password: password}, false, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns a token, mirroring Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/register", req, false, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the authenticated user profile.
func (c *Client) Me(ctx context.Context) (*session.Profile, error) {
	var out session.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSegments submits the video and subtitle pair for segmentation.
// Field names are exactly "video" and "subtitle"; the call blocks until the
// service has derived the candidate segments.
func (c *Client) CreateSegments(ctx context.Context, video, subtitle FilePart) (*GenerationResult, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for _, part := range []struct {
		field string
		file  FilePart
	}{
		{"video", video},
		{"subtitle", subtitle},
	} {
		fw, err := mw.CreateFormFile(part.field, part.file.Name)
		if err != nil {
			return nil, transportError(fmt.Errorf("build multipart: %w", err))
		}
		f, err := os.Open(part.file.Path)
		if err != nil {
			return nil, transportError(fmt.Errorf("open %s: %w", filepath.Base(part.file.Path), err))
		}
		_, err = io.Copy(fw, f)
		f.Close()
		if err != nil {
			return nil, transportError(fmt.Errorf("read %s: %w", filepath.Base(part.file.Path), err))
		}
	}
	if err := mw.Close(); err != nil {
		return nil, transportError(fmt.Errorf("finalize multipart: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create_segments/", body)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setCommonHeaders(req, true)

	c.logger.Info("submitting generation request",
		"video", video.Name,
		"subtitle", subtitle.Name,
		"body_bytes", body.Len(),
	)

	var out GenerationResult
	if err := c.send(c.pipelineClient, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Segments fetches the ordered candidate segments for a generation run.
func (c *Client) Segments(ctx context.Context, videoRef string) ([]Segment, error) {
	var out []Segment
	path := "/segments/video/" + url.PathEscape(videoRef)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TrimVideo submits the selected segment refs for concatenation, in order.
func (c *Client) TrimVideo(ctx context.Context, segmentNames []string) (*TrimResult, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/trim_video/", TrimRequest{SegmentNames: segmentNames}, true)
	if err != nil {
		return nil, err
	}

	c.logger.Info("submitting concatenation request", "segment_count", len(segmentNames))

	var out TrimResult
	if err := c.send(c.pipelineClient, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches the remote edit history for a user.
func (c *Client) History(ctx context.Context, userID int) ([]EditRecord, error) {
	var out []EditRecord
	path := fmt.Sprintf("/history/%d", userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchStatic streams a produced artifact (segment or final video) to w and
// returns the number of bytes written.
func (c *Client) FetchStatic(ctx context.Context, name string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/static/"+url.PathEscape(name), nil)
	if err != nil {
		return 0, transportError(err)
	}
	c.setCommonHeaders(req, false)

	resp, err := c.pipelineClient.Do(req)
	if err != nil {
		return 0, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, statusError(resp.StatusCode, body)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, transportError(fmt.Errorf("download %s: %w", name, err))
	}
	return n, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any, authenticated bool) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, transportError(fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, transportError(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setCommonHeaders(req, authenticated)
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, authenticated bool, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, payload, authenticated)
	if err != nil {
		return err
	}
	return c.send(c.jsonClient, req, out)
}

// setCommonHeaders attaches the correlation ID and, for authenticated calls,
// the bearer token when one is stored. A missing token never pre-empts the
// call; the server is the authority on rejection.
func (c *Client) setCommonHeaders(req *http.Request, authenticated bool) {
	req.Header.Set("X-Highlighter-Request-Id", uuid.NewString())
	if !authenticated {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) send(httpClient *http.Client, req *http.Request, out any) error {
	start := time.Now()

	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Warn("http request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		gwErr := statusError(resp.StatusCode, body)
		c.logger.Warn("http request rejected",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"detail", gwErr.Detail,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return gwErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return decodeError(err)
		}
	}

	c.logger.Debug("http request succeeded",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"token", logging.SanitizeToken(req.Header.Get("Authorization")),
	)
	return nil
}
