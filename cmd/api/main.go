package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-relay/channels"
	"github.com/marcelsud/webhook-relay/config"
	chihandlers "github.com/marcelsud/webhook-relay/internal/http/chi"
	"github.com/marcelsud/webhook-relay/metrics"
	"github.com/marcelsud/webhook-relay/relay"
	auditredis "github.com/marcelsud/webhook-relay/relay/redis"
	"github.com/marcelsud/webhook-relay/relay/scriptserver"
	auditsqlite "github.com/marcelsud/webhook-relay/relay/sqlite"
)

const TIMEOUT = 30 * time.Second

/* main wires the packages together: configuration, the optional audit
 * store, the script server client, metrics and the HTTP layer.
 * Imports point only downward: the application imports the business
 * layer, which imports the storage layer.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	// Metrics exporter must be installed before the collector so the
	// collector's instruments bind to the exporting provider
	exporter, err := metrics.NewOTelExporter()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(ctx)
	collector, err := metrics.NewCollector()
	if err != nil {
		fmt.Println(err)
		return
	}

	// Audit store is optional: the pipeline runs correctly without it
	store, err := newAuditStore(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	if store != nil {
		defer store.Close(ctx)
	}

	acks := channels.NewLoader()
	if cfg.ChannelsFile != "" {
		if err := acks.Load(cfg.ChannelsFile); err != nil {
			fmt.Println(err)
			return
		}
	}

	invoker := scriptserver.NewClient(
		cfg.ScriptServerURL,
		cfg.ScriptDatabase,
		cfg.ScriptName,
		cfg.ScriptUsername,
		cfg.ScriptPassword,
	)

	logger := httplog.NewLogger("webhook-relay", httplog.Options{JSON: true})
	s := relay.NewService(invoker, store, collector, logger)

	var auditLog relay.Reader
	if store != nil {
		auditLog = store
	}
	r := chihandlers.Handlers(s, acks, auditLog, exporter.ServeHTTP(), cfg.RelayMethod, cfg.LogToken)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func newAuditStore(cfg *config.Config) (relay.AuditStore, error) {
	switch cfg.AuditBackend {
	case "sqlite":
		return auditsqlite.NewRepository(cfg.AuditDBPath)
	case "redis":
		return auditredis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, nil
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("Forcing closing the server")
	}
}
