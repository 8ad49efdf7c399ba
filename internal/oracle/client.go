package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	apphttp "github.com/handiism/trackyear/internal/http"
)

const (
	defaultRetryMaxDelay  = 20 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 4
)

// Config captures the settings required to talk to the endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client asks a chat completion endpoint for release years.
type Client struct {
	cfg  Config
	http *apphttp.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(client *apphttp.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryMaxAttempts overrides the total number of attempts per question.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := apphttp.DefaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		http:             apphttp.NewClient(apphttp.WithTimeout(timeout)),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	return c
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// LookupYear asks for the release year of title by artist and returns the
// raw answer. The answer is not validated; see ParseYear.
func (c *Client) LookupYear(ctx context.Context, title, artist string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("oracle: api key required")
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: Question(title, artist)},
		},
		Temperature: 0,
		MaxTokens:   8,
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.sendOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err)
		if !retry {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if isConfigError(err) {
				return "", err
			}
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		if attempt == attempts {
			break
		}
		if err := c.sleep(ctx, c.nextDelay(delay, attempt)); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: failed after %d attempts: %w", ErrUnavailable, attempts, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, payload chatCompletionRequest) (string, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	var completion chatCompletionResponse
	if err := c.http.PostJSON(ctx, c.cfg.BaseURL, header, payload, &completion); err != nil {
		var statusErr *apphttp.StatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("oracle request: %w", err)
		}
		return "", fmt.Errorf("oracle request (timeout=%s): %w", c.http.Timeout(), err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("oracle request: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	for _, choice := range completion.Choices {
		if choice.Message.Content != "" {
			return choice.Message.Content, nil
		}
		if choice.Text != "" {
			return choice.Text, nil
		}
	}
	// An empty answer is an answer, just not a usable one.
	return "", nil
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

// retryDelay decides whether err is worth another attempt. A positive
// delay is a server-requested wait.
func (c *Client) retryDelay(ctx context.Context, err error) (time.Duration, bool) {
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) {
		return 0, false
	}

	var statusErr *apphttp.StatusError
	if errors.As(err, &statusErr) {
		if !statusErr.Retryable() {
			return 0, false
		}
		return statusErr.RetryAfter, true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return 0, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return 0, true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return 0, true
	}

	return 0, false
}

// isConfigError reports responses that will fail for every track alike:
// a rejected key, a forbidden model or a wrong endpoint.
func isConfigError(err error) bool {
	var statusErr *apphttp.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// nextDelay returns the wait before the next attempt: the server's
// Retry-After when given, otherwise base doubled per attempt.
func (c *Client) nextDelay(requested time.Duration, attempt int) time.Duration {
	if requested > 0 {
		return c.capDelay(requested)
	}
	return c.backoffDelay(attempt)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := c.maxDelay()
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) maxDelay() time.Duration {
	if c.retryMaxDelay > 0 {
		return c.retryMaxDelay
	}
	return defaultRetryMaxDelay
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if maxDelay := c.maxDelay(); delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
