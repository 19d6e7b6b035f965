package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agbru/glmeal/internal/client"
	"github.com/agbru/glmeal/internal/client/clienttest"
	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/metrics"
)

func newApp(t *testing.T, args ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	a, err := New(append([]string{"glmeal", "-env-file", ""}, args...), &errBuf)
	if err != nil {
		t.Fatalf("New(%v): %v (stderr: %s)", args, err, errBuf.String())
	}
	return a, &errBuf
}

func TestNewHelp(t *testing.T) {
	var errBuf bytes.Buffer
	_, err := New([]string{"glmeal", "-h"}, &errBuf)
	if !IsHelpError(err) {
		t.Fatalf("err = %v, want help error", err)
	}
	if !strings.Contains(strings.ToLower(errBuf.String()), "usage") {
		t.Errorf("help output missing usage:\n%s", errBuf.String())
	}
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New([]string{"glmeal", "-env-file", "", "-url", "ftp://example"}, &bytes.Buffer{})
	if err == nil || IsHelpError(err) {
		t.Fatalf("err = %v, want config error", err)
	}
	if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", apperrors.ExitCodeFor(err), apperrors.ExitErrorConfig)
	}
}

func TestRunOneShot(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"quiet", []string{"-quiet", "2 roti"}, []string{"14.5"}},
		{"text", []string{"-no-color", "-meal", "2 roti"}, []string{"2 x Roti", "Moderate Impact", "1 medium roti (40g)"}},
		{"smart json", []string{"-smart", "-json", "-choose", "chicken curry=Chicken Curry (Restaurant)", "2 roti with chicken curry"}, []string{`"total_gl": 20.81`, `"band": "high"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, errBuf := newApp(t, append([]string{"-url", srv.URL}, tt.args...)...)
			var out bytes.Buffer
			if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
				t.Fatalf("exit code = %d, stderr: %s", code, errBuf.String())
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestRunQuotaExceeded(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.FailNext(client.PathParse, http.StatusTooManyRequests)

	a, errBuf := newApp(t, "-url", srv.URL, "-quiet", "rice")
	code := a.Run(context.Background(), &bytes.Buffer{})
	if code != apperrors.ExitErrorUnavailable {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorUnavailable)
	}
	if !strings.Contains(errBuf.String(), "daily meal limit") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRunHealth(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()

	a, _ := newApp(t, "-url", srv.URL, "-health", "-no-color")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "healthy") {
		t.Errorf("output = %q", out.String())
	}

	a, _ = newApp(t, "-url", srv.URL, "-health", "-json")
	out.Reset()
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), `"database_loaded": true`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","database_loaded":false,"total_foods":0}`))
	}))
	defer srv.Close()

	a, errBuf := newApp(t, "-url", srv.URL, "-health")
	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorGeneric {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(errBuf.String(), "not healthy") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRunFoods(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()

	a, _ := newApp(t, "-url", srv.URL, "-foods", "-no-color")
	var out bytes.Buffer
	if code := a.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	for _, w := range []string{"Breads", "Roti", "White Rice", "5 foods"} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("output missing %q:\n%s", w, out.String())
		}
	}
}

func TestRunLogFile(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	logPath := filepath.Join(t.TempDir(), "glmeal.log")

	a, errBuf := newApp(t, "-url", srv.URL, "-quiet", "-log-level", "debug", "-log-file", logPath, "roti")
	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "starting") {
		t.Errorf("log file missing startup entry:\n%s", data)
	}
	if errBuf.Len() != 0 {
		t.Errorf("logs leaked to stderr: %s", errBuf.String())
	}
}

func TestRunLogFileUnwritable(t *testing.T) {
	a, errBuf := newApp(t, "-quiet", "-log-file", filepath.Join(t.TempDir(), "missing", "x.log"), "roti")
	if code := a.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
	}
	if !strings.Contains(errBuf.String(), "log-file") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestFlowMetricsWiring(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()

	a, _ := newApp(t, "-url", srv.URL, "-quiet", "roti")
	if err := a.setupLogger(); err != nil {
		t.Fatal(err)
	}
	a.metrics = metrics.NewMetrics()
	svc, err := a.newClient()
	if err != nil {
		t.Fatal(err)
	}
	if code := a.runOneShot(context.Background(), svc, &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}

	rec := httptest.NewRecorder()
	a.metrics.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, w := range []string{
		`glmeal_flow_transitions_total{step="portions"} 1`,
		`glmeal_flow_transitions_total{step="results"} 1`,
		`glmeal_remote_requests_total{operation="parse",outcome="success"} 1`,
	} {
		if !strings.Contains(body, w) {
			t.Errorf("metrics missing %s", w)
		}
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"--version"}, true},
		{[]string{"-meal", "rice", "-V"}, true},
		{[]string{"-version"}, true},
		{[]string{"-meal", "rice"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasVersionFlag(tt.args); got != tt.want {
			t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}

	var out bytes.Buffer
	PrintVersion(&out)
	if !strings.HasPrefix(out.String(), "glmeal "+Version) {
		t.Errorf("PrintVersion = %q", out.String())
	}
}
