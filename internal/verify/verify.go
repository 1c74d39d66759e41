// Package verify talks to the bot-verification challenge provider.
// Write operations require a one-time token obtained here first.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/grouptalk-dev/grouptalk/shared/utils"
)

// Challenger executes the verification challenge and yields a one-time token.
type Challenger interface {
	Execute(ctx context.Context) (string, error)
}

var ErrNoToken = errors.New("verify: challenge completed without a token")

// HTTPChallenger exchanges the service secret for a verification token
// at the provider's endpoint.
type HTTPChallenger struct {
	endpoint string
	secret   string
	client   *http.Client
}

func NewHTTPChallenger(endpoint, secret string) *HTTPChallenger {
	return &HTTPChallenger{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{},
	}
}

func (c *HTTPChallenger) Execute(ctx context.Context) (string, error) {
	payload, err := json.Marshal(struct {
		Secret string `json:"secret"`
	}{Secret: c.secret})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create challenge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("challenge provider unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("challenge provider returned status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := utils.Decode(resp.Body, &body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", ErrNoToken
	}
	return body.Token, nil
}
