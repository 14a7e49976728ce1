// Package bridgeclient talks to the handoff bridge over HTTP.
package bridgeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"handoff/internal/adapters/parser"
	"handoff/internal/domain"
)

// ErrUnexpectedStatus is wrapped by every non-success reply.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client is a bridge API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the bridge at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type acceptedResponse struct {
	OperationID string `json:"operation_id"`
}

type callbackRequest struct {
	URL      string `json:"url"`
	Activity bool   `json:"activity"`
}

// Share starts a share and returns the operation id.
func (c *Client) Share(ctx context.Context, platform domain.Platform, endpoint domain.Endpoint, message domain.Message) (string, error) {
	body := parser.ShareBody{Endpoint: endpoint, Message: parser.FromMessage(message)}
	var result acceptedResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/platforms/"+url.PathEscape(string(platform))+"/share", body, http.StatusAccepted, &result); err != nil {
		return "", err
	}
	return result.OperationID, nil
}

// Oauth starts an oauth request and returns the operation id.
func (c *Client) Oauth(ctx context.Context, platform domain.Platform) (string, error) {
	var result acceptedResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/platforms/"+url.PathEscape(string(platform))+"/oauth", nil, http.StatusAccepted, &result); err != nil {
		return "", err
	}
	return result.OperationID, nil
}

// Callback delivers a return URL the device received.
func (c *Client) Callback(ctx context.Context, rawURL string, activity bool) error {
	return c.do(ctx, http.MethodPost, "/api/v1/callbacks", callbackRequest{URL: rawURL, Activity: activity}, http.StatusNoContent, nil)
}

// Operation fetches one operation.
func (c *Client) Operation(ctx context.Context, id string) (domain.OperationRecord, error) {
	var record domain.OperationRecord
	err := c.do(ctx, http.MethodGet, "/api/v1/operations/"+url.PathEscape(id), nil, http.StatusOK, &record)
	return record, err
}

// Operations lists the live operations.
func (c *Client) Operations(ctx context.Context) ([]domain.OperationRecord, error) {
	var records []domain.OperationRecord
	err := c.do(ctx, http.MethodGet, "/api/v1/operations", nil, http.StatusOK, &records)
	return records, err
}

// Links drains the launch links waiting for the device.
func (c *Client) Links(ctx context.Context) ([]domain.LaunchRecord, error) {
	var links []domain.LaunchRecord
	err := c.do(ctx, http.MethodGet, "/api/v1/links", nil, http.StatusOK, &links)
	return links, err
}

// Wait polls operation id until it leaves the pending state or ctx is done.
func (c *Client) Wait(ctx context.Context, id string, interval time.Duration) (domain.OperationRecord, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		record, err := c.Operation(ctx, id)
		if err != nil {
			return record, err
		}
		if record.Status != domain.OperationPending {
			return record, nil
		}
		select {
		case <-ctx.Done():
			return record, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
