package properties

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hitbuilder/internal/server/core/application"
	"hitbuilder/internal/server/core/model"
)

const accountSummaries = `{
  "kind": "analytics#accountSummaries",
  "items": [
    {
      "id": "12345",
      "name": "Example account",
      "webProperties": [
        {"id": "UA-12345-1", "name": "Example site", "profiles": [{"id": "1", "name": "All Web Site Data"}]},
        {"id": "UA-12345-2", "name": "Example app"}
      ]
    },
    {"id": "67890", "name": "Empty account"}
  ]
}`

func TestManagement_List(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(accountSummaries))
		}))
		defer server.Close()

		got, err := NewManagement(ManagementConfig{URL: server.URL}).List(context.Background(), "token")
		require.NoError(t, err)

		assert.Equal(t, "Bearer token", auth)
		assert.Equal(t, []model.Property{
			{ID: "UA-12345-1", Name: "Example site", Group: "Example account"},
			{ID: "UA-12345-2", Name: "Example app", Group: "Example account"},
		}, got)
	})

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, want: application.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, want: application.ErrUnauthorized},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, want: application.ErrUpstream},
		{name: "not json", status: http.StatusOK, body: `<html>`, want: application.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewManagement(ManagementConfig{URL: server.URL}).List(context.Background(), "token")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewManagement(ManagementConfig{URL: url}).List(context.Background(), "token")
		assert.ErrorIs(t, err, application.ErrUpstream)
	})
}

func TestNewManagement_Defaults(t *testing.T) {
	m := NewManagement(ManagementConfig{})

	assert.Equal(t, DefaultAccountSummariesURL, m.url)
	assert.NotNil(t, m.http)
	assert.NotNil(t, m.logger)
}

func TestLoadStatic(t *testing.T) {
	dir := t.TempDir()

	{
		path := filepath.Join(dir, "properties.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
properties:
  - id: UA-1-1
    name: Site
    group: Account
`), 0o600))

		s, err := LoadStatic(path)
		require.NoError(t, err)

		got, err := s.List(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []model.Property{{ID: "UA-1-1", Name: "Site", Group: "Account"}}, got)

		got[0].Name = "changed"
		again, _ := s.List(context.Background(), "")
		assert.Equal(t, "Site", again[0].Name)
	}

	{
		path := filepath.Join(dir, "no-id.yaml")
		require.NoError(t, os.WriteFile(path, []byte("properties:\n  - name: Site\n"), 0o600))

		_, err := LoadStatic(path)
		assert.Error(t, err)
	}

	{
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("properties: [\n"), 0o600))

		_, err := LoadStatic(path)
		assert.Error(t, err)
	}

	{
		_, err := LoadStatic(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	}
}
