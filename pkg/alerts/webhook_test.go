package alerts_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/disk-guardian/pkg/alerts"
	"github.com/ogulcanaydogan/disk-guardian/pkg/model"
)

func TestWebhookChannel_Name(t *testing.T) {
	ch := alerts.NewWebhookChannel("https://example.com/webhook", "")
	assert.Equal(t, "webhook", ch.Name())
}

func TestWebhookChannel_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Disk-Guardian/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, http.MethodPost, r.Method)

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ch := alerts.NewWebhookChannel(server.URL, "")
	status, body, err := ch.Send(context.Background(), "disk is full", "tok-123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
	assert.Equal(t, "disk_alert", received["event"])
	assert.Equal(t, "disk is full", received["message"])
	assert.NotEmpty(t, received["timestamp"])
}

func TestWebhookChannel_Send_WithHMAC(t *testing.T) {
	var signature string
	var payload []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Signature-256")
		payload, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := alerts.NewWebhookChannel(server.URL, "test-secret")
	_, _, err := ch.Send(context.Background(), "msg", "tok")
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(payload)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), signature)
}

func TestWebhookChannel_Send_NoHMAC(t *testing.T) {
	var hasSignature bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasSignature = r.Header.Get("X-Signature-256") != ""
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ch := alerts.NewWebhookChannel(server.URL, "")
	_, _, err := ch.Send(context.Background(), "msg", "tok")
	require.NoError(t, err)
	assert.False(t, hasSignature)
}

func TestWebhookChannel_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ch := alerts.NewWebhookChannel(server.URL, "")
	status, _, err := ch.Send(context.Background(), "msg", "tok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestWebhookChannel_Send_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	ch := alerts.NewWebhookChannel(url, "")
	_, _, err := ch.Send(context.Background(), "msg", "tok")
	assert.Error(t, err)
}

func TestWebhookChannel_WithDispatcher_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := alerts.NewDispatcher(quietLogger(), nil)
	out := d.Dispatch(context.Background(), "msg", alerts.NewWebhookChannel(server.URL, ""), policy(3))

	assert.Equal(t, model.StatusDelivered, out.Status)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookChannel_WithDispatcher_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	d := alerts.NewDispatcher(quietLogger(), nil)
	out := d.Dispatch(context.Background(), "msg", alerts.NewWebhookChannel(server.URL, ""), policy(3))

	assert.Equal(t, model.ReasonUnauthenticated, out.Reason)
	assert.Equal(t, int32(1), calls.Load())
}
