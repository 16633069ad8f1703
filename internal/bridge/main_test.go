package bridge

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for the bridge tests, which
// open real HTTP test servers and MCP sessions.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// HTTP connection pool goroutines persist across tests
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*http2clientConnReadLoop).run"),
	)
}
