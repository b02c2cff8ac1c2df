package formfill

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hiremate/formfill/kit"
)

// Every tool endpoint goes through the middleware chain, so each call is
// logged with its operation and transport.
func TestEndpointChainLogsCalls(t *testing.T) {
	var buf bytes.Buffer
	e := New(nil, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	ep := e.endpoint("discover", func(_ context.Context, req any) (any, error) {
		return "found", nil
	})

	ctx := kit.WithTransport(context.Background(), "mcp")
	resp, err := ep(ctx, nil)
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	if resp != "found" {
		t.Errorf("resp = %v, want pass-through", resp)
	}

	line := buf.String()
	for _, want := range []string{`"op":"discover"`, `"transport":"mcp"`, "endpoint ok"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestEndpointChainLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	e := New(nil, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	boom := errors.New("page gone")
	ep := e.endpoint("fill", func(_ context.Context, _ any) (any, error) {
		return nil, boom
	})

	if _, err := ep(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want original error", err)
	}
	if !strings.Contains(buf.String(), "endpoint failed") {
		t.Errorf("log line %q missing failure record", buf.String())
	}
}
