// Package profiling starts the optional pprof debug listener and
// Pyroscope continuous profiling.
package profiling

import (
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jonesrussell/north-cloud/static-httpd/internal/logger"
)

const defaultPprofPort = "6060"

// PprofAddr returns the debug listener address, or "" when
// ENABLE_PROFILING is not "true". It only ever binds to localhost.
func PprofAddr() string {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return ""
	}
	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPprofPort
	}
	return "localhost:" + port
}

// StartPprofServer serves /debug/pprof/ on PprofAddr in the background.
// The returned server is nil when profiling is disabled.
func StartPprofServer(log logger.Logger) *http.Server {
	addr := PprofAddr()
	if addr == "" {
		return nil
	}

	srv := &http.Server{Addr: addr, Handler: http.DefaultServeMux}
	go func() {
		log.Info("Starting pprof server", logger.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()
	return srv
}
