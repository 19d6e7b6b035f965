package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/agbru/glmeal/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Handler returns the HTTP handler exposing /metrics.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", securityHeaders(m.handleMetrics))
	return mux
}

func (m *Metrics) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m.WritePrometheus(w, r)
}

func securityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next(w, r)
	}
}

// Serve exposes /metrics on addr until ctx is canceled.
//
// Parameters:
//   - ctx: Stops the server when canceled.
//   - addr: Listen address, e.g. ":9090".
//   - logger: Receives start and stop messages.
//
// Returns:
//   - error: A listen error, or nil after a clean shutdown.
func (m *Metrics) Serve(ctx context.Context, addr string, logger logging.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.serve(ctx, ln, logger)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener, logger logging.Logger) error {
	srv := &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", logging.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("metrics endpoint stopped")
		return nil
	}
}
