package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"golang.org/x/sync/errgroup"

	"tichu-lite/apps/server/internal/gateway"
	"tichu-lite/apps/server/internal/room"
	"tichu-lite/tichu"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>tichu-lite</title></head>
<body>
<h1>tichu-lite</h1>
<p>Connect a WebSocket client to <code>/ws?user_id=no_id</code>.</p>
</body>
</html>
`

func main() {
	filter, err := log.ParseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad LOG_LEVEL: %v\n", err)
		os.Exit(1)
	}
	logger := log.NewLogger(os.Stderr, log.FilterOption(filter))

	scoreLimit, err := strconv.Atoi(getEnv("SCORE_LIMIT", strconv.Itoa(tichu.DefaultScoreLimit)))
	if err != nil || scoreLimit <= 0 {
		logger.Error("bad SCORE_LIMIT, using default", "limit", getEnv("SCORE_LIMIT", ""))
		scoreLimit = tichu.DefaultScoreLimit
	}

	rooms := room.NewManager(logger.With(log.ModuleKey, "room"), tichu.Config{ScoreLimit: scoreLimit})
	gw := gateway.New(logger.With(log.ModuleKey, "gateway"), rooms)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(indexPage))
	})

	addr := getEnv("LISTEN_ADDR", "127.0.0.1:8001")
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", "addr", addr, "score_limit", scoreLimit)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error { return rooms.RunHeartbeat(ctx) })
	group.Go(func() error { return rooms.RunGraceSweeper(ctx) })
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
