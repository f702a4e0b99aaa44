// Package chessbuilder wires the server dependencies from configuration.
package chessbuilder

import (
    "context"
    "fmt"
    "time"

    "go.uber.org/zap"

    "github.com/park285/rusty-chess-go/internal/config"
    "github.com/park285/rusty-chess-go/internal/httpapi"
    "github.com/park285/rusty-chess-go/internal/msgcat"
    "github.com/park285/rusty-chess-go/internal/render"
    "github.com/park285/rusty-chess-go/internal/session"
    "github.com/park285/rusty-chess-go/internal/snapshot"
)

type Deps struct {
    Session  *session.Coordinator
    Messages *msgcat.Catalog
    Server   *httpapi.Server
    // Snapshots is nil when REDIS_URL is not set.
    Snapshots *snapshot.Store
}

// Close releases the Redis connection, if any.
func (d *Deps) Close() error {
    if d == nil || d.Snapshots == nil {
        return nil
    }
    return d.Snapshots.Close()
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    if logger == nil {
        logger = zap.NewNop()
    }

    msgs, err := msgcat.New(cfg.MessagesDir)
    if err != nil {
        return nil, fmt.Errorf("load messages: %w", err)
    }

    // Snapshot mirror (Redis optional)
    var store *snapshot.Store
    sessOpts := []session.Option{
        session.WithLogger(logger.Named("session")),
        session.WithStartFEN(cfg.StartFEN),
    }
    if cfg.RedisURL != "" {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        store, err = snapshot.Open(ctx, cfg.RedisURL,
            snapshot.WithPrefix(cfg.SnapshotPrefix),
            snapshot.WithTTL(cfg.SnapshotTTL),
            snapshot.WithLogger(logger.Named("snapshot")),
        )
        if err != nil {
            return nil, fmt.Errorf("init snapshot store: %w", err)
        }
        sessOpts = append(sessOpts, session.WithObserver(store))
    }

    coord, err := session.New(sessOpts...)
    if err != nil {
        if store != nil {
            _ = store.Close()
        }
        return nil, fmt.Errorf("init session: %w", err)
    }

    // mirror the start position before the first move
    if store != nil {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := store.Observe(ctx, coord.Snapshot()); err != nil {
            logger.Warn("chess_snapshot_initial_failed", zap.Error(err))
        }
    }

    server := httpapi.NewServer(coord,
        httpapi.WithLogger(logger.Named("http")),
        httpapi.WithCatalog(msgs),
        httpapi.WithRenderer(render.NewPNGRenderer()),
        httpapi.WithCORSOrigin(cfg.CORSAllowOrigin),
    )

    logger.Info("chess_session_ready",
        zap.String("session_id", coord.ID()),
        zap.Bool("snapshots", store != nil),
    )
    return &Deps{Session: coord, Messages: msgs, Server: server, Snapshots: store}, nil
}
