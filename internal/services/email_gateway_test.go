package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayEmailGateway_Send_Success(t *testing.T) {
	var got relaySendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	gw := NewRelayEmailGateway(server.URL, slog.Default())

	err := gw.Send(context.Background(), "owner@example.com", "123456", "Menubox")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", got.To)
	assert.Equal(t, "123456", got.Code)
	assert.Equal(t, "Menubox", got.AppName)
}

func TestRelayEmailGateway_Send_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"mail relay not configured"}`))
	}))
	defer server.Close()

	gw := NewRelayEmailGateway(server.URL, slog.Default())

	err := gw.Send(context.Background(), "owner@example.com", "123456", "Menubox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "mail relay not configured")
}

func TestRelayEmailGateway_Send_EmptyErrorBodyFallsBackToStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gw := NewRelayEmailGateway(server.URL, slog.Default())

	err := gw.Send(context.Background(), "owner@example.com", "123456", "Menubox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRelayEmailGateway_Send_Unreachable(t *testing.T) {
	// Reserve a port and close it so nothing is listening.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gw := NewRelayEmailGateway(url, slog.Default())

	err := gw.Send(context.Background(), "owner@example.com", "123456", "Menubox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail relay unreachable")
}
