package bitrise

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestDoSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))
	body, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/apps"})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if body != `{"data":[]}` {
		t.Errorf("Do returned %q, expected the verbatim response body", body)
	}
	// The Bitrise API expects the raw token, not a Bearer prefix.
	if gotAuth != "test-token" {
		t.Errorf("Authorization = %q, expected %q", gotAuth, "test-token")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, expected application/json", gotAccept)
	}
	if !strings.HasPrefix(gotAgent, "bitrise-mcp/") {
		t.Errorf("User-Agent = %q, expected bitrise-mcp prefix", gotAgent)
	}
}

func TestDoMissingTokenNoNetwork(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL))
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/me"})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Do returned %v, expected ErrMissingToken", err)
	}
	if requests != 0 {
		t.Errorf("server received %d requests, expected 0", requests)
	}
}

func TestDoQueryEncoding(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewClient("t", WithBaseURL(server.URL))
	query := url.Values{}
	query.Set("sort_by", "created_at")
	query.Set("limit", "10")
	if _, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/apps", Query: query}); err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if gotQuery.Get("sort_by") != "created_at" || gotQuery.Get("limit") != "10" {
		t.Errorf("query = %v, expected sort_by=created_at&limit=10", gotQuery)
	}
}

func TestDoRemoteErrorVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	defer server.Close()

	client := NewClient("bad-token", WithBaseURL(server.URL))
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/me"})

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Do returned %T, expected *RemoteError", err)
	}
	if remote.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, expected 401", remote.StatusCode)
	}
	if remote.Body != `{"message":"Unauthorized"}` {
		t.Errorf("Body = %q, expected the verbatim remote payload", remote.Body)
	}
}

func TestDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient("t", WithBaseURL(server.URL))
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/me"})

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("Do returned %T (%v), expected *TransportError", err, err)
	}
}

func TestDoCancelledBeforeSend(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("t", WithBaseURL(server.URL))
	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/me"})

	var cancelled *CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("Do returned %T, expected *CancelledError", err)
	}
	if cancelled.OutcomeUnknown {
		t.Error("cancellation before send must report a known (not sent) outcome")
	}
	if requests != 0 {
		t.Errorf("server received %d requests after pre-send cancellation, expected 0", requests)
	}
}

func TestDoCancelledMidFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient("t", WithBaseURL(server.URL))
	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/me"})

	var cancelled *CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("Do returned %T (%v), expected *CancelledError", err, err)
	}
	if !cancelled.OutcomeUnknown {
		t.Error("mid-flight cancellation must report an unknown remote outcome")
	}
}

func TestFetchURLNoAuthorization(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("raw log content"))
	}))
	defer server.Close()

	client := NewClient("secret-token")
	body, err := client.FetchURL(context.Background(), server.URL+"/logs/full")
	if err != nil {
		t.Fatalf("FetchURL returned error: %v", err)
	}
	if body != "raw log content" {
		t.Errorf("FetchURL returned %q", body)
	}
	// Pre-signed URLs must not leak the API token.
	if gotAuth != "" {
		t.Errorf("FetchURL sent Authorization %q, expected none", gotAuth)
	}
}
