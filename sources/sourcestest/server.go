// Package sourcestest provides helpers for testing source clients.
package sourcestest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewIPv4Server starts a test server bound to IPv4 loopback to avoid IPv6 listener issues.
func NewIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	t.Cleanup(server.Close)
	return server
}
