package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPClient makes REST and page calls to the Mugloar game server.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	log     *zap.Logger
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *HTTPClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// StartGame sends POST /game/start and returns the new game's id. Every
// failure is reported as a *StartError.
func (c *HTTPClient) StartGame(ctx context.Context) (string, error) {
	data, err := json.Marshal(startRequest{})
	if err != nil {
		return "", &StartError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+StartPath, bytes.NewReader(data))
	if err != nil {
		return "", &StartError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("start request failed", zap.Error(err))
		return "", &StartError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn("start request rejected", zap.Int("status", resp.StatusCode))
		return "", &StartError{Status: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(body)))}
	}

	var out startResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &StartError{Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	if out.GameID == nil || *out.GameID == "" {
		return "", &StartError{Status: resp.StatusCode, Err: errMissingGameID}
	}
	c.log.Info("game started", zap.String("game_id", *out.GameID))
	return *out.GameID, nil
}

// GetResult fetches and parses the result page for a finished game.
func (c *HTTPClient) GetResult(ctx context.Context, gameID string) (*GameResult, error) {
	body, err := c.getPage(ctx, ResultPath(url.PathEscape(gameID)), nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseResult(body)
}

// GetHistory fetches one page of the game history, newest first.
func (c *HTTPClient) GetHistory(ctx context.Context, page, size int) (*HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	body, err := c.getPage(ctx, HistoryPath, q)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	hp, err := ParseHistory(body)
	if err != nil {
		return nil, err
	}
	hp.Page = page
	hp.Size = size
	hp.Fetched = time.Now()
	return hp, nil
}

func (c *HTTPClient) getPage(ctx context.Context, path string, q url.Values) (io.ReadCloser, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
