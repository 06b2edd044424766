package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// RelayEmailGateway delivers verification codes by posting to the mail-relay
// service (cmd/mailer). Any 2xx response is success; any other status is a
// failure with the response body as the error message.
type RelayEmailGateway struct {
	relayURL string
	client   *http.Client
	logger   *slog.Logger
}

// NewRelayEmailGateway creates a new RelayEmailGateway
func NewRelayEmailGateway(relayURL string, logger *slog.Logger) *RelayEmailGateway {
	return &RelayEmailGateway{
		relayURL: relayURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type relaySendRequest struct {
	To      string `json:"to"`
	Code    string `json:"code"`
	AppName string `json:"appName,omitempty"`
}

// Send posts {to, code, appName} to the relay endpoint
func (g *RelayEmailGateway) Send(ctx context.Context, to, code, appName string) error {
	body, err := json.Marshal(relaySendRequest{To: to, Code: code, AppName: appName})
	if err != nil {
		return fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.relayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Surface the relay's body text as the failure reason
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	reason := strings.TrimSpace(string(msg))
	if reason == "" {
		reason = resp.Status
	}

	g.logger.Warn("mail relay rejected send",
		slog.Int("status", resp.StatusCode),
		slog.String("reason", reason))

	return fmt.Errorf("mail relay returned %d: %s", resp.StatusCode, reason)
}
