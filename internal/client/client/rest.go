package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/melitton/internal/auth"
	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/models"
)

const (
	tokenSubject  = "melitton-cli"
	tokenValidity = time.Minute
	// errorBodyLimit bounds how much of an error response is read.
	errorBodyLimit = 4 << 10
)

type RESTClient struct {
	baseURL string
	http    *http.Client
	secret  []byte
	logger  logging.Logger
}

// NewRESTClient talks to the API rooted at baseURL, e.g.
// "http://localhost:3001/api". An empty secret sends no Authorization header.
func NewRESTClient(baseURL string, httpClient *http.Client, secret string, logger logging.Logger) *RESTClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
	if secret != "" {
		c.secret = []byte(secret)
	}
	return c
}

func (c *RESTClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != nil {
		tok, err := auth.GenerateToken(tokenSubject, c.secret, tokenValidity)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "remote call failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "remote call", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, readErrorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage pulls "error" out of the JSON envelope, falling back to
// the raw text.
func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(raw))
}

func boxPath(id string) string  { return "/boxes/" + url.PathEscape(id) }
func baitPath(id string) string { return "/baits/" + url.PathEscape(id) }

// The payload types shadow fields the server must not receive: ids on
// create, and logs, which travel through AddLog only.
type (
	newBoxPayload struct {
		models.Box
		ID                *struct{} `json:"id,omitempty"`
		ManagementHistory *struct{} `json:"managementHistory,omitempty"`
	}
	boxPayload struct {
		models.Box
		ManagementHistory *struct{} `json:"managementHistory,omitempty"`
	}
	newBaitPayload struct {
		models.Bait
		ID *struct{} `json:"id,omitempty"`
	}
	newLogPayload struct {
		models.ManagementLog
		ID *struct{} `json:"id,omitempty"`
	}
)

func stripBox(b models.Box) models.Box {
	b = b.Clone()
	b.SyncState = ""
	return b
}

func stripBait(b models.Bait) models.Bait {
	b = b.Clone()
	b.SyncState = ""
	return b
}

func (c *RESTClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *RESTClient) ListBoxes(ctx context.Context) ([]models.Box, error) {
	var boxes []models.Box
	if err := c.do(ctx, http.MethodGet, "/boxes", nil, &boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

func (c *RESTClient) CreateBox(ctx context.Context, box models.Box) (models.Box, error) {
	var out models.Box
	if err := c.do(ctx, http.MethodPost, "/boxes", newBoxPayload{Box: stripBox(box)}, &out); err != nil {
		return models.Box{}, err
	}
	return out, nil
}

func (c *RESTClient) UpdateBox(ctx context.Context, box models.Box) (models.Box, error) {
	var out models.Box
	if err := c.do(ctx, http.MethodPut, boxPath(box.ID), boxPayload{Box: stripBox(box)}, &out); err != nil {
		return models.Box{}, err
	}
	return out, nil
}

func (c *RESTClient) DeleteBox(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, boxPath(id), nil, nil)
}

func (c *RESTClient) AddLog(ctx context.Context, boxID string, log models.ManagementLog) (models.ManagementLog, error) {
	log.SyncState = ""
	var out models.ManagementLog
	if err := c.do(ctx, http.MethodPost, boxPath(boxID)+"/logs", newLogPayload{ManagementLog: log}, &out); err != nil {
		return models.ManagementLog{}, err
	}
	return out, nil
}

func (c *RESTClient) ListBaits(ctx context.Context) ([]models.Bait, error) {
	var baits []models.Bait
	if err := c.do(ctx, http.MethodGet, "/baits", nil, &baits); err != nil {
		return nil, err
	}
	return baits, nil
}

func (c *RESTClient) CreateBait(ctx context.Context, bait models.Bait) (models.Bait, error) {
	var out models.Bait
	if err := c.do(ctx, http.MethodPost, "/baits", newBaitPayload{Bait: stripBait(bait)}, &out); err != nil {
		return models.Bait{}, err
	}
	return out, nil
}

func (c *RESTClient) UpdateBait(ctx context.Context, bait models.Bait) (models.Bait, error) {
	var out models.Bait
	if err := c.do(ctx, http.MethodPut, baitPath(bait.ID), stripBait(bait), &out); err != nil {
		return models.Bait{}, err
	}
	return out, nil
}

func (c *RESTClient) DeleteBait(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, baitPath(id), nil, nil)
}
