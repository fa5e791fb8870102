package middleware_test

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kuberx/portfolio-ledger/internal/api/middleware"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("tea")) //nolint:errcheck
	})
	handler := chimiddleware.RequestID(middleware.Logger(next))

	req := httptest.NewRequest(http.MethodGet, "/api/x%0Dforged", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, "GET") || !strings.Contains(line, "418") || !strings.Contains(line, "3B") {
		t.Errorf("Unexpected log line: %q", line)
	}
	if strings.Contains(strings.TrimSuffix(line, "\n"), "\r") {
		t.Errorf("Expected CR to be stripped, got %q", line)
	}
}
