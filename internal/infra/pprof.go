package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

// StartPprof serves the runtime profiles on pprof.addr when pprof.enabled is
// set. Profiles get their own mux so they never leak onto another listener.
func StartPprof(log applog.AppLogger, wg *sync.WaitGroup) func(context.Context) error {
	if !viper.GetBool("pprof.enabled") {
		return func(context.Context) error { return nil }
	}

	addr := viper.GetString("pprof.addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           pprofMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("pprof server error", "addr", addr, "err", err)
		}
	}()
	log.Info("pprof server started", "addr", addr)

	return srv.Shutdown
}

func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
