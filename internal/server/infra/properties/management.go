// Package properties источники ресурсов отслеживания пользователя:
// Management API Google Analytics и статический YAML файл.
package properties

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"hitbuilder/internal/server/core/application"
	"hitbuilder/internal/server/core/model"
)

const (
	DefaultAccountSummariesURL = "https://www.googleapis.com/analytics/v3/management/accountSummaries"

	maxResponseSize = 4 << 20
)

type ManagementConfig struct {
	Logger     *zap.SugaredLogger
	HTTPClient *http.Client
	URL        string
}

// Management читает ресурсы из accountSummaries Management API.
type Management struct {
	logger *zap.SugaredLogger
	http   *http.Client
	url    string
}

func NewManagement(conf ManagementConfig) *Management {
	m := &Management{
		logger: conf.Logger,
		http:   conf.HTTPClient,
		url:    conf.URL,
	}

	if m.logger == nil {
		m.logger = zap.NewNop().Sugar()
	}

	if m.http == nil {
		const timeout = 10 * time.Second
		m.http = &http.Client{Timeout: timeout}
	}

	if m.url == "" {
		m.url = DefaultAccountSummariesURL
	}

	return m
}

func (m *Management) List(ctx context.Context, token string) ([]model.Property, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request account summaries: %w: %w", application.ErrUpstream, err)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			m.logger.Errorw("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read account summaries: %w: %w", application.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("account summaries rejected token: %w", application.ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("account summaries status %d: %w", resp.StatusCode, application.ErrUpstream)
	case !gjson.ValidBytes(body):
		return nil, fmt.Errorf("account summaries is not json: %w", application.ErrUpstream)
	}

	return parseAccountSummaries(body), nil
}

func parseAccountSummaries(body []byte) []model.Property {
	properties := []model.Property{}

	gjson.GetBytes(body, "items").ForEach(func(_, account gjson.Result) bool {
		group := account.Get("name").String()

		account.Get("webProperties").ForEach(func(_, property gjson.Result) bool {
			properties = append(properties, model.Property{
				ID:    property.Get("id").String(),
				Name:  property.Get("name").String(),
				Group: group,
			})
			return true
		})

		return true
	})

	return properties
}
