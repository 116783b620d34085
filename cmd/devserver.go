package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/backoffice/internal/devserver"
	"github.com/zjrosen/backoffice/internal/log"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local REST backend for the forms",
	Long: `Run a local REST backend backed by SQLite. Every collection the forms
use is served with list, create, get, patch, put and delete endpoints, and
employees and departments are seeded on first start.

Example:
  backoffice devserver                      # Start on the configured address
  backoffice devserver --addr :9000         # Start on port 9000
  backoffice devserver --db :memory:        # Throwaway in-memory store`,
	RunE: runDevserver,
}

var (
	devAddr string
	devDB   string
)

func init() {
	rootCmd.AddCommand(devserverCmd)

	devserverCmd.Flags().StringVar(&devAddr, "addr", "", "Address to listen on (overrides config)")
	devserverCmd.Flags().StringVar(&devDB, "db", "", "SQLite database path (overrides config)")
}

func runDevserver(_ *cobra.Command, _ []string) error {
	_, cleanup, err := initDebugLog("backoffice-devserver")
	if err != nil {
		return err
	}
	defer cleanup()

	provider, shutdown, err := newTracing("backoffice-devserver")
	if err != nil {
		return err
	}
	defer shutdown()

	addr := devAddr
	if addr == "" {
		addr = cfg.DevServer.Addr
	}
	dbPath := devDB
	if dbPath == "" {
		dbPath = cfg.DevServer.DBPath
	}

	store, err := devserver.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() { _ = store.Close() }()

	opts := []devserver.Option{devserver.WithTracer(provider.Tracer())}
	if cfg.DevServer.Token != "" {
		opts = append(opts, devserver.WithToken(cfg.DevServer.Token))
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	server := &http.Server{
		Handler:           devserver.NewRouter(store, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	log.Info(log.CatDevServer, "devserver started", "addr", listener.Addr().String(), "db", dbPath)
	fmt.Printf("Devserver listening on http://%s (db: %s)\n", listener.Addr(), dbPath)
	fmt.Println("Press Ctrl+C to stop")

	select {
	case sig := <-sigCh:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatDevServer, "Error stopping devserver", err)
	}

	fmt.Println("Devserver stopped")
	return nil
}
