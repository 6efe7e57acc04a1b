package mp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitbuilder/internal/server/core/model"
)

func TestClient_Validate(t *testing.T) {
	const payload = "v=1&t=pageview&tid=UA-1&cid=abc"

	t.Run("field errors", func(t *testing.T) {
		var gotBody, gotContentType, gotAccept string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			gotContentType = r.Header.Get("Content-Type")
			gotAccept = r.Header.Get("Accept")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"errors": [{"fieldPath": "tid", "description": "invalid"}]}`))
		}))
		defer server.Close()

		client := NewClient(Config{DebugEndpoint: server.URL})

		result, err := client.Validate(context.Background(), payload)
		require.NoError(t, err)

		assert.Equal(t, payload, result.Hit)
		assert.Equal(t, payload, gotBody)
		assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
		assert.Equal(t, "application/json", gotAccept)
		assert.False(t, result.Valid)
		assert.Equal(t, []model.ValidationMessage{{Param: "tid", Description: "invalid"}}, result.Messages)
		assert.JSONEq(t, `{"errors": [{"fieldPath": "tid", "description": "invalid"}]}`, string(result.Response))

		m := model.New(payload)
		m, issued := m.BeginValidation()
		m, ok := m.ApplyValidation(result)
		require.True(t, ok)
		assert.Equal(t, payload, issued)

		for _, p := range m.Parameters() {
			if p.Name == "tid" {
				assert.Equal(t, "invalid", p.Error)
				continue
			}
			assert.Empty(t, p.Error, p.Name)
		}
	})

	t.Run("not json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("GIF89a"))
		}))
		defer server.Close()

		client := NewClient(Config{DebugEndpoint: server.URL})

		_, err := client.Validate(context.Background(), payload)
		assert.ErrorIs(t, err, ErrNotJSON)
	})

	t.Run("bad status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(Config{DebugEndpoint: server.URL})

		_, err := client.Validate(context.Background(), payload)
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client := NewClient(Config{DebugEndpoint: url, Timeout: time.Second})

		_, err := client.Validate(context.Background(), payload)
		assert.Error(t, err)
	})
}

func TestClient_Send(t *testing.T) {
	var got string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write([]byte("GIF89a"))
	}))
	defer server.Close()

	client := NewClient(Config{CollectEndpoint: server.URL})

	err := client.Send(context.Background(), "v=1&t=pageview")
	require.NoError(t, err)
	assert.Equal(t, "v=1&t=pageview", got)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, DefaultDebugEndpoint, client.debugURL)
	assert.Equal(t, DefaultCollectEndpoint, client.collectURL)
	assert.Equal(t, DefaultTimeout, client.http.Timeout)
	assert.NotNil(t, client.logger)
}
