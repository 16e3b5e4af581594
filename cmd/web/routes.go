package main

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes(timeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	api := alice.New(jsonHeaders, func(next http.Handler) http.Handler {
		return timeoutHandler(next, timeout)
	})

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /api/v1/mysteries/today", api.ThenFunc(app.todaysMystery))
	mux.Handle("POST /api/v1/mysteries/next-scenario", api.ThenFunc(app.nextScenario))
	mux.Handle("POST /api/v1/admin/daily-mysteries/generate", api.ThenFunc(app.generateDailyMystery))
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})) //nolint:exhaustruct // defaults

	common := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	return common.Then(mux)
}
