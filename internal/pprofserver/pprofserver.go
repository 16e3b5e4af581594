// Package pprofserver exposes the runtime profiler on a separate loopback listener.
package pprofserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/myrjola/plottwist/internal/errors"
)

var ErrNotLoopback = errors.NewSentinel("pprof address is not a loopback address")

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServer(addr string) *http.Server {
	mux := http.NewServeMux()
	Handle(mux)
	return &http.Server{ //nolint:exhaustruct // defaults are fine for a debug server
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Second,
	}
}

// checkLoopback makes sure the profiler is never exposed to the world.
func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.Wrap(err, "split host port", slog.String("addr", addr))
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return errors.Wrap(ErrNotLoopback, "check address", slog.String("addr", addr))
	}
	return nil
}

// Launch serves pprof at the loopback address addr until ctx is done. Failures are logged and do not stop the
// process.
func Launch(ctx context.Context, addr string, logger *slog.Logger) {
	logger = logger.With("source", "pprofserver")
	if err := checkLoopback(addr); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "refusing to start pprof server", errors.SlogError(err))
		return
	}
	srv := newServer(addr)
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprof_addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server stopped",
				errors.SlogError(errors.Wrap(err, "listen and serve")))
		}
	}()
}
