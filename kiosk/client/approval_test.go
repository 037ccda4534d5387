package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airkiosk/protocol"
)

func TestSendDecisionPostsApproval(t *testing.T) {
	var got protocol.Decision
	var sessionHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		sessionHeader = r.Header.Get("X-Session-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	err := SendDecision(context.Background(), server.URL, "session-42", true)
	require.NoError(t, err)
	assert.True(t, got.Approved)
	assert.Equal(t, "session-42", sessionHeader)
}

func TestSendDecisionRejection(t *testing.T) {
	var got protocol.Decision
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer server.Close()

	require.NoError(t, SendDecision(context.Background(), server.URL, "s", false))
	assert.False(t, got.Approved)
}

func TestSendDecisionNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	err := SendDecision(context.Background(), server.URL, "s", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSendDecisionUnreachableEndpoint(t *testing.T) {
	err := SendDecision(context.Background(), "http://127.0.0.1:1/approve", "s", true)
	require.Error(t, err)
}
