// Command vannot-server exposes the coordinate, seed, flank and join
// operations over a JSON REST API.
//
// Usage:
//
//	vannot-server [options]
//
// Options:
//
//	--config     YAML config file
//	--port       Port to listen on (default: 8080)
//	--host       Host to bind to (default: localhost)
//	--log-level  Log level (default: info)
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/aria-lang/vannot-go/api"
	"github.com/aria-lang/vannot-go/internal/config"
	"github.com/aria-lang/vannot-go/internal/logging"
)

func main() {
	flags := pflag.NewFlagSet("vannot-server", pflag.ExitOnError)
	configFile := flags.String("config", "", "YAML config file")
	flags.Int("port", 8080, "Port to listen on")
	flags.String("host", "localhost", "Host to bind to")
	flags.String("log-level", "info", "Log level")
	flags.Parse(os.Args[1:])

	v := config.New()
	v.BindPFlag("server.port", flags.Lookup("port"))
	v.BindPFlag("server.host", flags.Lookup("host"))
	v.BindPFlag("log-level", flags.Lookup("log-level"))

	cfg, err := config.Load(v, *configFile)
	if err != nil {
		log.Fatal(err)
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		log.Fatal(err)
	}

	addr := cfg.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("server is shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("could not gracefully shutdown: %v", err)
		}
		close(done)
	}()

	log.WithField("addr", addr).Info("vannot API server starting")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("could not listen on %s: %v", addr, err)
	}

	<-done
	log.Info("server stopped")
}
