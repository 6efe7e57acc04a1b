// Package mp клиент Measurement Protocol: проверка хита на сервере валидации
// и отправка хита в сбор данных.
package mp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"hitbuilder/internal/server/core/model"
)

const (
	DefaultDebugEndpoint   = "https://www.google-analytics.com/debug/collect"
	DefaultCollectEndpoint = "https://www.google-analytics.com/collect"
	DefaultTimeout         = 10 * time.Second

	maxResponseSize = 1 << 20
)

// ErrNotJSON сервер проверки вернул ответ, который не является JSON.
var ErrNotJSON = errors.New("validation response is not json")

type Config struct {
	Logger          *zap.SugaredLogger
	HTTPClient      *http.Client
	DebugEndpoint   string
	CollectEndpoint string
	Timeout         time.Duration
}

type Client struct {
	logger     *zap.SugaredLogger
	http       *http.Client
	debugURL   string
	collectURL string
}

func NewClient(conf Config) *Client {
	c := &Client{
		logger:     conf.Logger,
		http:       conf.HTTPClient,
		debugURL:   conf.DebugEndpoint,
		collectURL: conf.CollectEndpoint,
	}

	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}

	if c.http == nil {
		timeout := conf.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}

	if c.debugURL == "" {
		c.debugURL = DefaultDebugEndpoint
	}

	if c.collectURL == "" {
		c.collectURL = DefaultCollectEndpoint
	}

	return c
}

// Validate отправляет хит на сервер проверки.
// Результат содержит ответ сервера и ровно тот хит, который был отправлен.
func (c *Client) Validate(ctx context.Context, payload string) (model.ValidationResult, error) {
	body, err := c.post(ctx, c.debugURL, payload)
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("failed to validate hit: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return model.ValidationResult{}, ErrNotJSON
	}

	return ParseResponse(payload, body), nil
}

// Send отправляет хит в Google Analytics.
func (c *Client) Send(ctx context.Context, payload string) error {
	if _, err := c.post(ctx, c.collectURL, payload); err != nil {
		return fmt.Errorf("failed to send hit: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, url, payload string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			c.logger.Errorw("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	c.logger.Debugw("measurement protocol request",
		"url", url,
		"status", resp.StatusCode,
		"size", len(body),
	)

	return body, nil
}
