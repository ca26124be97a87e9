package payload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

const DefaultGeneratorURLTemplate = "https://%s.vercel.app/api/blum"

const maxResponseBytes = 1 << 20

var ErrEmptyPayload = errors.New("payload server returned no payload")

// Generator asks a payload server for the anti-tamper blob of one round.
// URLTemplate holds a single %s replaced by the endpoint ID.
type Generator struct {
	URLTemplate    string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.PayloadGenerator = Generator{}

type generateRequest struct {
	GameID string `json:"game_id"`
	Points int    `json:"points"`
	Dogs   int    `json:"dogs"`
}

type generateResponse struct {
	Payload string `json:"payload"`
}

type errorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g Generator) Generate(ctx context.Context, endpointID string, req domain.PayloadRequest) (string, error) {
	if strings.TrimSpace(endpointID) == "" {
		return "", errors.New("endpoint id is required")
	}
	if req.RoundID == "" {
		return "", errors.New("round id is required")
	}

	body, err := json.Marshal(generateRequest{GameID: req.RoundID, Points: req.Points, Dogs: req.SecondaryPoints})
	if err != nil {
		return "", fmt.Errorf("encode payload request: %w", err)
	}

	requestCtx, cancel := requestContext(ctx, g.RequestTimeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, g.endpointURL(endpointID), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create payload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(g.HTTPClient).Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request payload from %s: %w", endpointID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read payload response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("request payload from %s: status %d: %s", endpointID, resp.StatusCode, describeError(raw))
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode payload response: %w", err)
	}
	if decoded.Payload == "" {
		return "", fmt.Errorf("%s: %w", endpointID, ErrEmptyPayload)
	}

	return decoded.Payload, nil
}

func (g Generator) endpointURL(endpointID string) string {
	template := g.URLTemplate
	if template == "" {
		template = DefaultGeneratorURLTemplate
	}
	return fmt.Sprintf(template, endpointID)
}

func describeError(raw []byte) string {
	var decoded errorResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != nil {
		if decoded.Error.Code != "" {
			return decoded.Error.Code + ": " + decoded.Error.Message
		}
		return decoded.Error.Message
	}

	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

func httpClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return http.DefaultClient
}

func requestContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
