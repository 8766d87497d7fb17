// Package rest is the HTTP client for the game server endpoints.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

const (
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"

	maxErrorBody = 512
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (that *StatusError) Error() string {
	if that.Body == "" {
		return fmt.Sprintf("server responded %d", that.Code)
	}
	return fmt.Sprintf("server responded %d: %s", that.Code, that.Body)
}

type Client struct {
	logger  *slog.Logger
	baseURL *url.URL
	http    *http.Client
}

func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q needs a scheme and host", baseURL)
	}

	return &Client{
		logger:  logger.With("component", "rest"),
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the server address the client talks to.
func (that *Client) BaseURL() string {
	return that.baseURL.String()
}

// Join registers a name and returns the player id. Joining with a taken name returns its id.
func (that *Client) Join(ctx context.Context, name string) (int64, error) {
	var out struct {
		PlayerID int64 `json:"player_id"`
	}

	query := url.Values{"name": {name}}
	if err := that.do(ctx, http.MethodPost, "/join", query, nil, &out, false); err != nil {
		return 0, fmt.Errorf("failed to join: %w", err)
	}

	return out.PlayerID, nil
}

// State fetches the session snapshot as seen by playerID.
func (that *Client) State(ctx context.Context, playerID int64) (*entity.Snapshot, error) {
	var snap entity.Snapshot

	if err := that.do(ctx, http.MethodGet, "/state", playerQuery(playerID), nil, &snap, false); err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	return &snap, nil
}

func (that *Client) Control(ctx context.Context, action entity.ControlAction, payload map[string]any) error {
	query := url.Values{"action": {string(action)}}
	if err := that.do(ctx, http.MethodPost, "/control", query, body(payload), nil, false); err != nil {
		return fmt.Errorf("failed to send control %s: %w", action, err)
	}

	return nil
}

func (that *Client) GameAction(
	ctx context.Context,
	playerID int64,
	action string,
	payload map[string]any,
) (entity.ActionResult, error) {
	var result entity.ActionResult

	query := playerQuery(playerID)
	query.Set("action", action)
	if err := that.do(ctx, http.MethodPost, "/game_action", query, body(payload), &result, true); err != nil {
		return entity.ActionResult{}, fmt.Errorf("failed to send game action %s: %w", action, err)
	}

	return result, nil
}

// SubmitQuiz sends the answers keyed by question id.
func (that *Client) SubmitQuiz(ctx context.Context, playerID int64, answers map[int]string) error {
	if err := that.do(ctx, http.MethodPost, "/submit_quiz", playerQuery(playerID), answers, nil, true); err != nil {
		return fmt.Errorf("failed to submit quiz: %w", err)
	}

	return nil
}

func (that *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	in, out any,
	idempotent bool,
) error {
	log := that.logger.With("method", "do", "path", path)

	u := *that.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotent {
		req.Header.Set(headerIdempotencyKey, uuid.NewString())
	}

	resp, err := that.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Debug("unexpected status", "request_id", requestID, "status", resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func playerQuery(playerID int64) url.Values {
	return url.Values{"player_id": {strconv.FormatInt(playerID, 10)}}
}

// body makes sure the server always receives a JSON object.
func body(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}
