// Package api is the HTTP façade over the document and auth services.
// It is stateless apart from its configuration: credentials come from a
// TokenSource at call time and no call is ever retried.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contextiq/contextiq-cli/internal/utils"
)

// TokenSource supplies the bearer credential for outgoing requests.
// An empty string means the caller is anonymous and no header is sent.
type TokenSource interface {
	AccessToken() string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	authURL    string
	tokens     TokenSource
	log        *zap.Logger
}

// NewClient builds a client for the document API at baseURL and the auth
// service at authURL. tokens may be nil and set later with SetTokenSource.
func NewClient(baseURL, authURL string, httpTimeout time.Duration, tokens TokenSource, log *zap.Logger) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		authURL:    strings.TrimRight(authURL, "/"),
		tokens:     tokens,
		log:        log,
	}
}

// SetTokenSource wires the credential source. Call before issuing requests.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

type request struct {
	method      string
	url         string
	body        io.Reader
	contentType string
	withAuth    bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("X-Request-Id", reqID)
	httpReq.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if r.withAuth && c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Warn("api request failed",
			zap.String("method", r.method),
			zap.String("path", httpReq.URL.Path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return &UnreachableError{Host: httpReq.URL.Host, Err: err}
	}
	defer resp.Body.Close()

	fields := []zap.Field{
		zap.String("method", r.method),
		zap.String("path", httpReq.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("duration", time.Since(start)),
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		apiErr := decodeAPIError(resp.StatusCode, body)
		apiErr.RequestID = extractRequestID(resp)
		if apiErr.RequestID == "" {
			apiErr.RequestID = reqID
		}
		c.log.Warn("api request rejected", append(fields, zap.String("message", apiErr.Message))...)
		return classifyAPIError(apiErr)
	}
	c.log.Debug("api request", fields...)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: empty body")
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError pulls a human readable message out of the common error
// body shapes: {"detail": ...}, {"message": ...}, {"error": {...}},
// {"non_field_errors": [...]} and per-field lists such as {"email": [...]}.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		apiErr.Message = utils.Truncate(apiErr.Message, 200)
		return apiErr
	}
	if code, ok := raw["code"].(string); ok {
		apiErr.Code = code
	}
	if msg, ok := raw["detail"].(string); ok {
		apiErr.Message = msg
		return apiErr
	}
	if msg, ok := raw["message"].(string); ok {
		apiErr.Message = msg
		return apiErr
	}
	switch v := raw["error"].(type) {
	case string:
		apiErr.Message = v
		return apiErr
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			apiErr.Message = msg
		}
		if code, ok := v["code"].(string); ok {
			apiErr.Code = code
		}
		return apiErr
	}
	if msg := firstString(raw["non_field_errors"]); msg != "" {
		apiErr.Message = msg
		return apiErr
	}
	for field, v := range raw {
		if msg := firstString(v); msg != "" {
			apiErr.Message = field + ": " + msg
			break
		}
	}
	return apiErr
}

func firstString(v any) string {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	s, _ := list[0].(string)
	return s
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "X-Correlation-Id", "X-Amzn-Requestid"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}
