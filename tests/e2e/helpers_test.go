// Package e2e contains end-to-end tests that compile and run the real
// introspect binary as a subprocess. Each test spins up an in-process fake
// control-plane daemon (httptest.Server), runs one probe against it and
// checks stdout and the process exit status.
package e2e

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// probeBin is the path to the compiled introspect binary, set by TestMain.
var probeBin string

// TestMain builds the introspect binary once before all E2E tests run.
// Set E2E_INTROSPECT_BIN to skip the build step (useful in CI with a pre-built binary).
func TestMain(m *testing.M) {
	if bin := os.Getenv("E2E_INTROSPECT_BIN"); bin != "" {
		probeBin = bin
		os.Exit(m.Run())
	}

	tmp, err := os.MkdirTemp("", "introspect-e2e-*")
	if err != nil {
		log.Fatalf("e2e: create temp dir: %v", err)
	}

	probeBin = filepath.Join(tmp, "introspect")

	// Build from the module root (two directories above this file).
	root, err := filepath.Abs("../..")
	if err != nil {
		log.Fatalf("e2e: resolve module root: %v", err)
	}

	cmd := exec.Command("go", "build", "-o", probeBin, "./cmd/introspect")
	cmd.Dir = root
	cmd.Stdout = os.Stderr // surface build errors in test output
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		log.Fatalf("e2e: build introspect binary: %v", err)
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// probeResult is what one invocation of the binary produced.
type probeResult struct {
	stdout string
	stderr string
	exit   int
}

// runProbe executes the binary with args and an empty INTROSPECT_* environment.
func runProbe(t *testing.T, args ...string) probeResult {
	t.Helper()

	cmd := exec.Command(probeBin, args...)
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	res := probeResult{stdout: out.String(), stderr: errb.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.exit = exitErr.ExitCode()
	default:
		require.NoError(t, err)
	}

	if os.Getenv("TEST_VERBOSE") != "" {
		t.Logf("introspect %v -> exit %d\nstdout: %s\nstderr: %s", args, res.exit, res.stdout, res.stderr)
	}
	return res
}

// newDaemon starts an httptest.Server that answers path with body and
// returns the port it listens on.
func newDaemon(t *testing.T, routes map[string]string) string {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Port()
}

// closedPort returns a port on 127.0.0.1 that refuses connections.
func closedPort(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close()
	return u.Port()
}
