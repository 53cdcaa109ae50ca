package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chathub/internal/config"
	"chathub/internal/handler"
	"chathub/internal/hub"
	"chathub/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	messages, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open message store: %v", err)
	}
	defer func() {
		if err := messages.Close(); err != nil {
			log.Printf("failed to close message store: %v", err)
		}
	}()

	chatHub := hub.New(messages)
	router := handler.NewRouter(chatHub, messages, cfg.Websocket)

	startServer(ctx, cfg.Server, router)
}

func openStore(cfg config.StoreConfig) (*store.Store, error) {
	if cfg.InMemory {
		log.Println("message store running in memory, history will not survive restarts")
		return store.OpenInMemory()
	}
	return store.Open(cfg.Path)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr, err := serverCfg.Addr()
	if err != nil {
		log.Fatalf("invalid listen address: %v", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chathub listening on %s", addr)
	if err := runServer(ctx, srv, serverCfg.ShutdownTimeout); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
