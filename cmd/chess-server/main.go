package main

import (
    "context"
    "errors"
    "log"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    appcfg "github.com/park285/rusty-chess-go/internal/config"
    "github.com/park285/rusty-chess-go/internal/chessbuilder"
    "github.com/park285/rusty-chess-go/internal/obslog"
)

func main() {
    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }
    logger, err := obslog.Init(cfg.Log)
    if err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    defer func() { _ = logger.Sync() }()

    deps, err := chessbuilder.New(cfg, logger)
    if err != nil {
        logger.Fatal("chess_init_failed", zap.Error(err))
    }
    defer deps.Close()

    errCh := make(chan error, 1)
    go func() {
        logger.Info("chess_http_listen", zap.String("addr", cfg.ListenAddr))
        errCh <- deps.Server.ListenAndServe(cfg.ListenAddr)
    }()

    // Wait for termination signal
    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
    select {
    case sig := <-sigCh:
        logger.Info("chess_shutdown", zap.String("signal", sig.String()))
    case err := <-errCh:
        if err != nil && !errors.Is(err, context.Canceled) {
            logger.Error("chess_http_stopped", zap.Error(err))
        }
    }

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := deps.Server.Shutdown(ctx); err != nil {
        logger.Warn("chess_http_shutdown_failed", zap.Error(err))
    }
}
