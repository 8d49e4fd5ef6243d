package alerts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/disk-guardian/pkg/alerts"
)

func TestSlackChannel_Name(t *testing.T) {
	ch := alerts.NewSlackChannel("", "#ops")
	assert.Equal(t, "slack", ch.Name())
}

func TestSlackChannel_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	ch := alerts.NewSlackChannel(server.URL, "#disk-alerts")
	status, _, err := ch.Send(context.Background(), "Severity: CRITICAL", "xoxb-test")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "#disk-alerts", received["channel"])
	assert.Contains(t, received["text"], "Severity: CRITICAL")
}

func TestSlackChannel_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected int
	}{
		{"invalid auth", http.StatusOK, `{"ok":false,"error":"invalid_auth"}`, http.StatusUnauthorized},
		{"revoked token", http.StatusOK, `{"ok":false,"error":"token_revoked"}`, http.StatusUnauthorized},
		{"rate limited", http.StatusOK, `{"ok":false,"error":"ratelimited"}`, http.StatusTooManyRequests},
		{"channel missing", http.StatusOK, `{"ok":false,"error":"channel_not_found"}`, http.StatusBadGateway},
		{"garbage body", http.StatusOK, `not json`, http.StatusBadGateway},
		{"server error", http.StatusInternalServerError, ``, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			ch := alerts.NewSlackChannel(server.URL, "#test")
			status, _, err := ch.Send(context.Background(), "msg", "xoxb-test")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}
