package client_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vaultsens/vaultsens-go/client"
	"github.com/vaultsens/vaultsens-go/internal/dotenv"
)

const (
	mockBase   = "https://vault.test"
	testKey    = "key_123"
	testSecret = "sec_456"
)

var (
	liveBaseURL string
	liveKey     string
	liveSecret  string
)

func init() {
	_ = dotenv.LoadDotEnv()
	liveBaseURL = dotenv.GetEnv("VAULTSENS_BASE_URL", "")
	liveKey = dotenv.GetEnv("VAULTSENS_API_KEY", "")
	liveSecret = dotenv.GetEnv("VAULTSENS_API_SECRET", "")
}

// newServer starts an httptest server and counts every request it sees.
func newServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// newClient builds a client against srv with test credentials.
func newClient(t *testing.T, srv *httptest.Server, opts ...client.Option) *client.Client {
	t.Helper()
	all := append([]client.Option{
		client.WithHTTPClient(srv.Client()),
		client.WithCredentials(testKey, testSecret),
	}, opts...)
	c, err := client.NewClient(srv.URL, all...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// newMockClient builds a client whose default transport is httpmock'd.
func newMockClient(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()
	all := append([]client.Option{client.WithCredentials(testKey, testSecret)}, opts...)
	c, err := client.NewClient(mockBase, all...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
